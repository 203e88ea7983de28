package core

import (
	"fmt"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

// Mapping assigns each schema field a source column index or Unmapped.
//
// Several fields may share one column; no uniqueness is enforced across
// fields. A Mapping is not safe for concurrent use; Session serializes access.
type Mapping struct {
	schema  *schema.Schema
	columns int
	assign  []int // indexed by schema position
}

// NewMapping returns a mapping for a table with the given column count,
// with every field unmapped.
func NewMapping(s *schema.Schema, columns int) *Mapping {
	m := &Mapping{
		schema:  s,
		columns: columns,
		assign:  make([]int, s.Len()),
	}
	m.Clear()
	return m
}

// Schema returns the schema the mapping covers.
func (m *Mapping) Schema() *schema.Schema {
	return m.schema
}

// Columns returns the column count of the table the mapping refers to.
func (m *Mapping) Columns() int {
	return m.columns
}

// Set assigns column to field. Pass Unmapped to clear the field.
func (m *Mapping) Set(field string, column int) error {
	i, ok := m.schema.Index(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if column != Unmapped && (column < 0 || column >= m.columns) {
		return fmt.Errorf("%w: column %d, table has %d", ErrColumnOutOfRange, column, m.columns)
	}
	m.assign[i] = column
	return nil
}

// Get returns the column assigned to field, or Unmapped.
func (m *Mapping) Get(field string) (int, error) {
	i, ok := m.schema.Index(field)
	if !ok {
		return Unmapped, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return m.assign[i], nil
}

// Unset clears a single field.
func (m *Mapping) Unset(field string) error {
	return m.Set(field, Unmapped)
}

// Column returns the column assigned to the field at schema position i.
func (m *Mapping) Column(i int) int {
	return m.assign[i]
}

// IsComplete reports whether every field is mapped.
func (m *Mapping) IsComplete() bool {
	for _, c := range m.assign {
		if c == Unmapped {
			return false
		}
	}
	return true
}

// Clear resets every field to Unmapped.
func (m *Mapping) Clear() {
	for i := range m.assign {
		m.assign[i] = Unmapped
	}
}

// MappedCount returns how many fields have a column.
func (m *Mapping) MappedCount() int {
	n := 0
	for _, c := range m.assign {
		if c != Unmapped {
			n++
		}
	}
	return n
}

// Assignments returns field name to column for mapped fields only.
func (m *Mapping) Assignments() map[string]int {
	out := make(map[string]int, len(m.assign))
	for i, c := range m.assign {
		if c != Unmapped {
			out[m.schema.Field(i)] = c
		}
	}
	return out
}

// SharedColumns returns columns read by more than one field, with the
// fields in schema order.
func (m *Mapping) SharedColumns() map[int][]string {
	byColumn := make(map[int][]string)
	for i, c := range m.assign {
		if c != Unmapped {
			byColumn[c] = append(byColumn[c], m.schema.Field(i))
		}
	}
	for c, fields := range byColumn {
		if len(fields) < 2 {
			delete(byColumn, c)
		}
	}
	return byColumn
}

// MappedFields returns the names of mapped fields in schema order.
func (m *Mapping) MappedFields() []string {
	var out []string
	for i, c := range m.assign {
		if c != Unmapped {
			out = append(out, m.schema.Field(i))
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *Mapping) Clone() *Mapping {
	c := &Mapping{
		schema:  m.schema,
		columns: m.columns,
		assign:  make([]int, len(m.assign)),
	}
	copy(c.assign, m.assign)
	return c
}

// FieldAssignment is one row of a mapping listing.
type FieldAssignment struct {
	Field  string `json:"field"`
	Column int    `json:"column"`
	Header string `json:"header,omitempty"`
}

// List returns every field in schema order with its column and, when header
// is given, the source column name.
func (m *Mapping) List(header []string) []FieldAssignment {
	out := make([]FieldAssignment, len(m.assign))
	for i, c := range m.assign {
		fa := FieldAssignment{Field: m.schema.Field(i), Column: c}
		if c >= 0 && c < len(header) {
			fa.Header = header[c]
		}
		out[i] = fa
	}
	return out
}

