package core

import "errors"

// Sentinel errors. Messages double as the patterns matched by MapError.
var (
	// ErrUnreadableFile means no encoding/delimiter combination produced a
	// consistent table. No partial table is returned alongside it.
	ErrUnreadableFile = errors.New("unreadable file")

	// ErrFileTooLarge is returned when input exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnknownField means a mapping referenced a name outside the schema.
	// It indicates a caller bug.
	ErrUnknownField = errors.New("unknown field")

	// ErrColumnOutOfRange means a mapping referenced a column the table lacks.
	ErrColumnOutOfRange = errors.New("column out of range")

	// ErrNoTable is returned by session operations that need a loaded file.
	ErrNoTable = errors.New("no file loaded")

	// ErrDriverUnavailable is returned by format writers whose external
	// component (database server, driver) is not present. The exporter
	// answers it with a fallback offer.
	ErrDriverUnavailable = errors.New("driver unavailable")

	// ErrTableNotOwned is returned when an export would replace a database
	// table that fieldmap did not create.
	ErrTableNotOwned = errors.New("table not created by fieldmap")

	// ErrUnknownFormat is returned for unregistered export formats.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrNoFallback is returned when a fallback export is requested without
	// a pending offer.
	ErrNoFallback = errors.New("no fallback offered")

	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many sessions")

	// ErrTemplateNotFound is returned for unknown template names.
	ErrTemplateNotFound = errors.New("template not found")
)
