// Package schema defines the fixed, ordered set of target fields that CSV
// columns are mapped onto.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySchema is returned when a schema would have no fields.
	ErrEmptySchema = errors.New("schema has no fields")

	// ErrDuplicateField is returned when a field name appears twice.
	ErrDuplicateField = errors.New("duplicate schema field")
)

// Schema is an ordered list of unique target field names.
// A Schema is immutable once built and safe for concurrent use.
type Schema struct {
	fields []string
	index  map[string]int
}

// New builds a Schema from field names. Names are trimmed; blank names are
// skipped. Field names are case-sensitive, so "BAUW" and "Bauw_3" are distinct.
func New(fields []string) (*Schema, error) {
	s := &Schema{
		fields: make([]string, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := s.index[f]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f)
		}
		s.index[f] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	if len(s.fields) == 0 {
		return nil, ErrEmptySchema
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for package-level defaults.
func MustNew(fields []string) *Schema {
	s, err := New(fields)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return s
}

// Fields returns a copy of the field names in schema order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the name at position i.
func (s *Schema) Field(i int) string {
	return s.fields[i]
}

// Index returns the position of name, or false if it is not a schema field.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Has reports whether name is a schema field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}
