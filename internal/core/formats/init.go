// Package formats registers the export formats with the core registry.
// Import this package to ensure all formats are registered.
package formats

// Each format file uses init() to register itself.

import (
	"fmt"
	"strings"
)

// Format keys.
const (
	KeyPostgres = "postgres"
	KeyXLSX     = "xlsx"
	KeyCSV      = "csv"
)

// toCells converts a row to the []any form expected by row writers.
func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// requirePath rejects blank output paths before any file is touched.
func requirePath(format, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s: output path is required", format)
	}
	return nil
}
