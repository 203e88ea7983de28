// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Decode   DecodeConfig
	Mapping  MappingConfig
	Export   ExportConfig
	Session  SessionConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`

	// RequestsPerMinute is the per-client rate limit for the API (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// DatabaseConfig holds settings for the postgres export format.
// The URL is optional: without it the postgres format reports its driver as
// unavailable and the exporter offers the fallback format instead.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the export pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// ConnectTimeout bounds how long the exporter waits for a connection (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// DecodeConfig holds CSV decoding settings.
type DecodeConfig struct {
	// MaxFileSize is the maximum accepted input size in bytes (default: 100MB)
	MaxFileSize int64 `env:"DECODE_MAX_FILE_SIZE" default:"104857600"`

	// SampleLines is how many leading records are used to sniff the delimiter (default: 20)
	SampleLines int `env:"DECODE_SAMPLE_LINES" default:"20"`

	// RegionalEncoding is the 8-bit code page tried before latin-1 (default: windows-1252)
	RegionalEncoding string `env:"DECODE_REGIONAL_ENCODING" default:"windows-1252"`

	// DetectRegional lets charset detection pick the regional code page (default: false)
	DetectRegional bool `env:"DECODE_DETECT_REGIONAL" default:"false"`

	// MaxBadRatio is the highest tolerated share of replacement/control characters (default: 0.02)
	MaxBadRatio float64 `env:"DECODE_MAX_BAD_RATIO" default:"0.02"`
}

// MappingConfig holds auto-mapping and schema settings.
type MappingConfig struct {
	// SchemaFile optionally replaces the built-in target fields (YAML or one name per line)
	SchemaFile string `env:"MAPPING_SCHEMA_FILE"`

	// NameThreshold is the minimum name-similarity score to auto-map a field (default: 0.3)
	NameThreshold float64 `env:"MAPPING_NAME_THRESHOLD" default:"0.3"`

	// MinContainLen is the shortest normalized name eligible for containment matches (default: 2)
	MinContainLen int `env:"MAPPING_MIN_CONTAIN_LEN" default:"2"`

	// TemplateDir is where mapping templates are stored (default: templates)
	TemplateDir string `env:"MAPPING_TEMPLATE_DIR" default:"templates"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	// OutputDir is where HTTP-initiated exports are written (default: exports)
	OutputDir string `env:"EXPORT_OUTPUT_DIR" default:"exports"`

	// TableName is the default postgres table name (default: mapped_data)
	TableName string `env:"EXPORT_TABLE_NAME" default:"mapped_data"`

	// TablePrefix is prepended to every postgres table name (default: fieldmap_)
	TablePrefix string `env:"EXPORT_TABLE_PREFIX" default:"fieldmap_"`

	// SheetName is the spreadsheet sheet name (default: MappedData)
	SheetName string `env:"EXPORT_SHEET_NAME" default:"MappedData"`

	// CSVDelimiter is the delimiter used by the csv format (default: ;)
	CSVDelimiter string `env:"EXPORT_CSV_DELIMITER" default:";"`

	// FallbackFormat is offered when the primary format's driver is unavailable (default: xlsx)
	FallbackFormat string `env:"EXPORT_FALLBACK_FORMAT" default:"xlsx"`

	// MaxConcurrent is the maximum number of parallel exports (default: 2)
	MaxConcurrent int `env:"EXPORT_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for an export slot (default: 30s)
	MaxWaitTime time.Duration `env:"EXPORT_MAX_WAIT_TIME" default:"30s"`
}

// SessionConfig holds mapping session settings for the HTTP API.
type SessionConfig struct {
	// IdleTTL is how long an untouched session is kept (default: 30m)
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL" default:"30m"`

	// MaxSessions caps the number of live sessions (default: 100)
	MaxSessions int `env:"SESSION_MAX" default:"100"`

	// ReapInterval is how often idle sessions are removed (default: 1m)
	ReapInterval time.Duration `env:"SESSION_REAP_INTERVAL" default:"1m"`
}

// SecurityConfig holds security-related settings for the HTTP API.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey rejects API requests without a valid key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Delimiter returns the csv export delimiter as a rune.
func (c *ExportConfig) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ';'
}
