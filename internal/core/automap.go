package core

// automap.go implements the two auto-mapping strategies.
//
// Both are pure: they build a fresh Mapping from a table and a schema and
// never look at an existing mapping. Callers replace the session mapping
// wholesale with the result.

import (
	"github.com/JonMunkholm/fieldmap/internal/schema"
)

// Name matching defaults.
const (
	DefaultNameThreshold = 0.3
	DefaultMinContainLen = 2
)

// NameMatchOptions tunes name-similarity matching.
type NameMatchOptions struct {
	// Threshold is the lowest score that still maps a field.
	Threshold float64
	// MinContainLen is the shortest normalized name allowed to score a
	// containment match. Shorter names only score via exact or token matches.
	MinContainLen int
}

// DefaultNameMatchOptions returns the default threshold and containment length.
func DefaultNameMatchOptions() NameMatchOptions {
	return NameMatchOptions{
		Threshold:     DefaultNameThreshold,
		MinContainLen: DefaultMinContainLen,
	}
}

// FieldMatch is the best column found for one field.
type FieldMatch struct {
	Field  string    `json:"field"`
	Column int       `json:"column"` // Unmapped when Score is below the threshold
	Header string    `json:"header,omitempty"`
	Score  float64   `json:"score"`
	Kind   MatchKind `json:"kind"`
}

// AutoMapPositional maps fields[i] to column i for every i below the column
// count. Remaining fields stay unmapped.
func AutoMapPositional(t *Table, s *schema.Schema) *Mapping {
	m := NewMapping(s, t.Width())
	n := min(s.Len(), t.Width())
	for i := 0; i < n; i++ {
		m.assign[i] = i
	}
	return m
}

// AutoMapByName maps each field to its most similar header column.
// Fields whose best score is below opts.Threshold stay unmapped.
func AutoMapByName(t *Table, s *schema.Schema, opts NameMatchOptions) *Mapping {
	m := NewMapping(s, t.Width())
	for i, fm := range MatchByName(t, s, opts) {
		m.assign[i] = fm.Column
	}
	return m
}

// MatchByName scores every header column against every field and returns the
// best match per field in schema order. The highest score wins; ties go to
// the lowest column index. A column may be the best match for several fields.
func MatchByName(t *Table, s *schema.Schema, opts NameMatchOptions) []FieldMatch {
	headers := make([]nameKey, len(t.Header))
	for j, h := range t.Header {
		headers[j] = newNameKey(h)
	}

	out := make([]FieldMatch, s.Len())
	for i := 0; i < s.Len(); i++ {
		field := s.Field(i)
		fk := newNameKey(field)

		best := FieldMatch{Field: field, Column: Unmapped, Kind: MatchNone}
		for j, hk := range headers {
			score, kind := nameSimilarity(fk, hk, opts.MinContainLen)
			if score > best.Score {
				best.Column, best.Score, best.Kind = j, score, kind
			}
		}

		if best.Column != Unmapped && best.Score < opts.Threshold {
			best.Column = Unmapped
		}
		if best.Column != Unmapped {
			best.Header = t.Header[best.Column]
		}
		out[i] = best
	}
	return out
}
