package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DelimiterCandidates are tried in order; earlier candidates win ties.
var DelimiterCandidates = []rune{',', ';', '\t', '|'}

var (
	errNoDelimiter       = errors.New("no delimiter yields more than one column")
	errUnterminatedQuote = errors.New("quoted field is not closed before end of input")
)

// delimiterScore is how well a delimiter explains the sample.
type delimiterScore struct {
	delimiter rune
	columns   int // modal column count
	lines     int // sampled lines with exactly that count
}

// sniffDelimiter picks the candidate whose modal column count (> 1) is shared
// by the most sampled lines.
func sniffDelimiter(text string, sampleLines int) (rune, error) {
	var best delimiterScore
	for _, d := range DelimiterCandidates {
		s := scoreDelimiter(text, d, sampleLines)
		if s.lines > best.lines {
			best = s
		}
	}
	if best.lines == 0 {
		return 0, errNoDelimiter
	}
	return best.delimiter, nil
}

// scoreDelimiter splits up to sampleLines leading records with delim.
// A record that fails to parse ends the sample.
func scoreDelimiter(text string, delim rune, sampleLines int) delimiterScore {
	r := newCSVReader(text, delim)

	counts := make(map[int]int)
	for i := 0; i < sampleLines; i++ {
		rec, err := r.Read()
		if err != nil {
			break
		}
		counts[len(rec)]++
	}

	score := delimiterScore{delimiter: delim}
	for cols, lines := range counts {
		if cols < 2 {
			continue
		}
		if lines > score.lines || (lines == score.lines && cols > score.columns) {
			score.columns = cols
			score.lines = lines
		}
	}
	return score
}

func newCSVReader(text string, delim rune) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// parseTable reads text into a Table normalized to the header width.
func parseTable(text string, delim rune) (*Table, error) {
	r := newCSVReader(text, delim)

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("no header row")
	}
	if err != nil {
		return nil, err
	}
	lastLine, lastCol := r.FieldPos(len(header) - 1)

	t := &Table{
		Header:    cleanHeader(header),
		Delimiter: delim,
	}
	width := len(t.Header)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lastLine, lastCol = r.FieldPos(len(rec) - 1)

		switch {
		case len(rec) < width:
			row := make([]string, width)
			copy(row, rec)
			rec = row
			t.Padded++
		case len(rec) > width:
			rec = rec[:width:width]
			t.Truncated++
		}
		t.Rows = append(t.Rows, rec)
	}

	// Lazy quoting lets an unclosed quote run to the end of input, which
	// would fold every later line into one cell.
	if openQuoteAtEnd(text, lastLine, lastCol, delim) {
		return nil, fmt.Errorf("line %d: %w", lastLine, errUnterminatedQuote)
	}
	return t, nil
}

// openQuoteAtEnd reports whether the field starting at line and col (as
// reported by csv.Reader.FieldPos) opens a quote that is never closed.
func openQuoteAtEnd(text string, line, col int, delim rune) bool {
	offset := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return false
		}
		offset += i + 1
	}
	offset += col - 1
	if offset < 0 || offset >= len(text) || text[offset] != '"' {
		return false
	}

	body := text[offset+1:]
	for i := 0; i < len(body); i++ {
		if body[i] != '"' {
			continue
		}
		if i+1 == len(body) {
			return false
		}
		switch next := body[i+1]; {
		case next == '"':
			i++
		case rune(next) == delim || next == '\n' || next == '\r':
			return false
		}
	}
	return true
}

// cleanHeader trims whitespace and stray byte order marks from header cells.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
	}
	return out
}
