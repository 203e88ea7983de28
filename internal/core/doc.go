// Package core provides the mapping and ingestion engine.
//
// The package turns an arbitrary CSV file into rows aligned to a fixed target
// schema. It has no UI or transport dependencies and is used by the CLI, the
// HTTP API and tests alike.
//
// # Pipeline
//
//	raw bytes ─► Decoder ─► Table ─► auto-map ─► Mapping ─► Project ─► []ExportRow ─► Exporter
//
//   - [Decoder] infers the encoding (utf-8-sig, utf-16, utf-8, a regional
//     code page, latin-1) and the delimiter (comma, semicolon, tab, pipe),
//     and normalizes ragged rows to the header width.
//   - [Mapping] assigns each schema field a source column or [Unmapped].
//     Several fields may read the same column.
//   - [AutoMapPositional] and [AutoMapByName] build fresh mappings;
//     [ApplyTemplate] rebuilds a saved [Template].
//   - [Project] resolves rows through a mapping.
//   - [Exporter] writes rows through a registered format and offers a
//     fallback format when the primary reports [ErrDriverUnavailable].
//
// # Sessions
//
// A [Session] bundles one loaded table with its mapping and is the interface
// offered to frontends. [Service] owns the shared decoder, exporter and
// template store and keeps sessions for the HTTP API, reaping idle ones in
// the background.
//
// # Format Registry
//
// Export formats are registered at init time using [RegisterFormat]:
//
//	core.RegisterFormat(core.FormatDefinition{
//	    Key:       "xlsx",
//	    Label:     "Excel workbook",
//	    Extension: ".xlsx",
//	    Write:     writeXLSX,
//	})
//
// # Error Handling
//
// Errors wrap the package sentinels and are classified with errors.Is.
// [MapError] turns them into user-facing messages with support codes:
//
//   - FILE001-FILE005: File errors (empty, unreadable, too large)
//   - MAP001-MAP003: Mapping errors (unknown field, column, template)
//   - EXP001-EXP007: Export errors (driver unavailable, format, I/O)
//   - SES001-SES004: Session errors (not found, limit, cancelled)
package core
