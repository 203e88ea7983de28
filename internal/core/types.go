package core

import "time"

// Unmapped marks a target field with no source column.
const Unmapped = -1

// Table is a decoded CSV file: a header row plus data rows.
//
// Every row holds exactly len(Header) cells: the decoder pads short rows with
// empty strings and truncates long ones, recording how many of each it did.
// A Table is never modified after decoding; a reload produces a new Table.
type Table struct {
	Header    []string
	Rows      [][]string
	Encoding  string // Name of the encoding that decoded the file
	Delimiter rune   // Field delimiter chosen by sniffing
	Padded    int    // Rows that had fewer cells than the header
	Truncated int    // Rows that had more cells than the header
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// ExportRow holds one output row, aligned to schema field order.
type ExportRow []string

// ExportState is the terminal or intermediate state of an export attempt.
type ExportState string

const (
	StateDone          ExportState = "done"
	StateOfferFallback ExportState = "offer_fallback"
	StateFailed        ExportState = "failed"
)

// FallbackOffer describes the secondary export the caller may request after
// the primary format reported its driver as unavailable.
type FallbackOffer struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

// ExportRequest is the input to an export attempt.
type ExportRequest struct {
	Rows   []ExportRow
	Fields []string
	Format string
	Path   string
}

// ExportResult reports the outcome of one export attempt.
type ExportResult struct {
	State    ExportState
	Format   string
	Path     string
	Rows     int
	Offer    *FallbackOffer // Set when State is StateOfferFallback
	Err      error          // Set when State is not StateDone
	Duration time.Duration
}

// Done reports whether the export finished successfully.
func (r ExportResult) Done() bool {
	return r.State == StateDone
}

// TableSummary describes a loaded table for display.
type TableSummary struct {
	Source    string     `json:"source"`
	Encoding  string     `json:"encoding"`
	Delimiter string     `json:"delimiter"`
	Header    []string   `json:"header"`
	RowCount  int        `json:"rowCount"`
	Padded    int        `json:"padded"`
	Truncated int        `json:"truncated"`
	Sample    [][]string `json:"sample,omitempty"`
}

// DelimiterName returns a human-readable name for a delimiter rune.
func DelimiterName(r rune) string {
	switch r {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(r)
	}
}

// Summarize builds a TableSummary with up to sampleRows leading rows.
func Summarize(source string, t *Table, sampleRows int) TableSummary {
	n := sampleRows
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return TableSummary{
		Source:    source,
		Encoding:  t.Encoding,
		Delimiter: DelimiterName(t.Delimiter),
		Header:    t.Header,
		RowCount:  len(t.Rows),
		Padded:    t.Padded,
		Truncated: t.Truncated,
		Sample:    t.Rows[:n],
	}
}
