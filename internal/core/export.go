package core

// export.go drives the two-tier export.
//
// State machine:
//
//	Export(primary) ── ok ──────────────────────────► Done
//	       │
//	       ├── ErrDriverUnavailable + fallback ─────► OfferFallback
//	       │                                             │
//	       └── any other error ─────────────────────► Failed
//	                                                     │
//	Fallback(secondary) ── ok ──► Done                  caller decides
//	       └── error ──────────► Failed
//
// The fallback attempt never produces another offer.

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/fieldmap/internal/config"
	"github.com/JonMunkholm/fieldmap/internal/logging"
)

// ExporterOptions configures an Exporter.
type ExporterOptions struct {
	DatabaseURL    string
	ConnectTimeout time.Duration
	MaxConns       int
	TableName      string
	TablePrefix    string
	SheetName      string
	CSVComma       rune
	// FallbackFormat overrides the fallback declared by a format definition.
	FallbackFormat string
}

// ExporterOptionsFromConfig builds ExporterOptions from application config.
func ExporterOptionsFromConfig(cfg *config.Config) ExporterOptions {
	return ExporterOptions{
		DatabaseURL:    cfg.Database.URL,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		MaxConns:       cfg.Database.MaxConns,
		TableName:      cfg.Export.TableName,
		TablePrefix:    cfg.Export.TablePrefix,
		SheetName:      cfg.Export.SheetName,
		CSVComma:       cfg.Export.Delimiter(),
		FallbackFormat: cfg.Export.FallbackFormat,
	}
}

// Exporter writes projected rows through registered formats.
type Exporter struct {
	opts ExporterOptions
}

// NewExporter creates an Exporter.
func NewExporter(opts ExporterOptions) *Exporter {
	if opts.TableName == "" {
		opts.TableName = "mapped_data"
	}
	if opts.SheetName == "" {
		opts.SheetName = "MappedData"
	}
	if opts.CSVComma == 0 {
		opts.CSVComma = ';'
	}
	return &Exporter{opts: opts}
}

// Export attempts the requested format. A writer reporting
// ErrDriverUnavailable yields StateOfferFallback when a fallback format is
// available; every other error yields StateFailed with the error unchanged.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) ExportResult {
	def, result, ok := e.lookup(req)
	if !ok {
		return result
	}

	err := e.write(ctx, def, req, &result)
	if err == nil {
		return result
	}

	logger := logging.FromContext(ctx)
	if errors.Is(err, ErrDriverUnavailable) {
		if fb, ok := e.fallbackFor(def); ok {
			result.State = StateOfferFallback
			result.Offer = &FallbackOffer{
				Format: fb.Key,
				Path:   SwapExtension(req.Path, fb.Extension, e.opts.TableName),
			}
			logger.Warn("export driver unavailable, offering fallback",
				"format", def.Key,
				"fallback", fb.Key,
				"fallback_path", result.Offer.Path,
				"error", err,
			)
			return result
		}
	}

	result.State = StateFailed
	logger.Error("export failed", "format", def.Key, "path", req.Path, "error", err)
	return result
}

// Fallback performs the secondary attempt after an offer. req.Format is
// normally the offered format and req.Path the offered or adjusted path.
// The result is always StateDone or StateFailed.
func (e *Exporter) Fallback(ctx context.Context, req ExportRequest) ExportResult {
	def, result, ok := e.lookup(req)
	if !ok {
		return result
	}

	if err := e.write(ctx, def, req, &result); err != nil {
		result.State = StateFailed
		logging.FromContext(ctx).Error("fallback export failed",
			"format", def.Key, "path", req.Path, "error", err)
	}
	return result
}

func (e *Exporter) lookup(req ExportRequest) (FormatDefinition, ExportResult, bool) {
	result := ExportResult{Format: req.Format, Path: req.Path, Rows: len(req.Rows)}

	def, ok := GetFormat(req.Format)
	if !ok {
		result.State = StateFailed
		result.Err = fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
		return def, result, false
	}
	return def, result, true
}

// write runs the writer and records state, error and duration on result.
func (e *Exporter) write(ctx context.Context, def FormatDefinition, req ExportRequest, result *ExportResult) error {
	start := time.Now()
	err := def.Write(ctx, e.destination(req.Path), req.Fields, req.Rows)
	result.Duration = time.Since(start)

	if err != nil {
		result.Err = err
		return err
	}

	result.State = StateDone
	logging.FromContext(ctx).Info("export completed",
		"format", def.Key,
		"path", req.Path,
		"rows", len(req.Rows),
		"fields", len(req.Fields),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return nil
}

func (e *Exporter) destination(path string) Destination {
	return Destination{
		Path:           path,
		DatabaseURL:    e.opts.DatabaseURL,
		TableName:      e.opts.TableName,
		TablePrefix:    e.opts.TablePrefix,
		SheetName:      e.opts.SheetName,
		CSVComma:       e.opts.CSVComma,
		ConnectTimeout: e.opts.ConnectTimeout,
		MaxConns:       e.opts.MaxConns,
	}
}

// fallbackFor resolves the format offered when def's driver is unavailable.
func (e *Exporter) fallbackFor(def FormatDefinition) (FormatDefinition, bool) {
	key := def.Fallback
	if e.opts.FallbackFormat != "" {
		key = e.opts.FallbackFormat
	}
	if key == "" || key == def.Key {
		return FormatDefinition{}, false
	}
	return GetFormat(key)
}

// SwapExtension replaces the extension of path with ext. An empty path
// becomes defaultBase plus ext.
//
//	SwapExtension("out/data.db", ".xlsx", "mapped_data") -> "out/data.xlsx"
//	SwapExtension("survey", ".xlsx", "mapped_data")      -> "survey.xlsx"
func SwapExtension(path, ext, defaultBase string) string {
	if strings.TrimSpace(path) == "" {
		return defaultBase + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
