package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Destination carries everything a format writer needs to produce output.
type Destination struct {
	Path           string        // output file, or table name for database formats
	DatabaseURL    string        // empty when no database is configured
	TableName      string        // default table name when Path names none
	TablePrefix    string        // prepended to database table names
	SheetName      string        // spreadsheet sheet name
	CSVComma       rune          // delimiter for the csv format
	ConnectTimeout time.Duration // database connect timeout
	MaxConns       int           // database pool size
}

// WriteFunc writes rows under the given field names to dst.
// Writers whose external component is missing must return an error
// wrapping ErrDriverUnavailable.
type WriteFunc func(ctx context.Context, dst Destination, fields []string, rows []ExportRow) error

// FormatDefinition describes an export format.
type FormatDefinition struct {
	Key       string    // registry key, e.g. "xlsx"
	Label     string    // human-readable name
	Extension string    // output file extension including the dot; empty for non-file stores
	Fallback  string    // format offered when this one reports ErrDriverUnavailable
	Write     WriteFunc `json:"-"`
}

var (
	formats   = make(map[string]FormatDefinition)
	formatsMu sync.RWMutex
)

// RegisterFormat adds an export format to the registry.
// Panics if a format with the same key is already registered.
func RegisterFormat(def FormatDefinition) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	if def.Key == "" || def.Write == nil {
		panic("format definition needs a key and a writer")
	}
	if _, exists := formats[def.Key]; exists {
		panic(fmt.Sprintf("format already registered: %s", def.Key))
	}

	formats[def.Key] = def
}

// GetFormat returns a format definition by key.
// Returns false if not found.
func GetFormat(key string) (FormatDefinition, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	def, ok := formats[key]
	return def, ok
}

// Formats returns all registered formats sorted by key.
func Formats() []FormatDefinition {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	result := make([]FormatDefinition, 0, len(formats))
	for _, def := range formats {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// FormatKeys returns the registered format keys sorted alphabetically.
func FormatKeys() []string {
	defs := Formats()
	keys := make([]string, len(defs))
	for i, def := range defs {
		keys[i] = def.Key
	}
	return keys
}

// ClearFormats removes all registered formats.
// Primarily useful for testing.
func ClearFormats() {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats = make(map[string]FormatDefinition)
}
