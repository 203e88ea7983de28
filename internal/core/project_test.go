package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

func sampleTable() *Table {
	return &Table{
		Header: []string{"id", "name", "city"},
		Rows: [][]string{
			{"1", "Ann", "Oslo"},
			{"2", "Bob", "Bergen"},
			{"3", "Cid", ""},
		},
	}
}

func TestProject_ManyToOne(t *testing.T) {
	tbl := sampleTable()
	m := NewMapping(schema.MustNew([]string{"fieldA", "fieldB"}), tbl.Width())
	require.NoError(t, m.Set("fieldA", 2))
	require.NoError(t, m.Set("fieldB", 2))

	rows := Project(tbl, m)
	require.Len(t, rows, len(tbl.Rows))
	for i, row := range rows {
		assert.Equal(t, tbl.Rows[i][2], row[0])
		assert.Equal(t, tbl.Rows[i][2], row[1])
	}
}

func TestProject_UnmappedIsEmpty(t *testing.T) {
	tbl := sampleTable()
	s := schema.MustNew([]string{"ID", "Unused", "Name"})
	m := NewMapping(s, tbl.Width())
	require.NoError(t, m.Set("ID", 0))
	require.NoError(t, m.Set("Name", 1))

	rows := Project(tbl, m)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.Len(t, row, s.Len())
		assert.Equal(t, "", row[1])
	}
	assert.Equal(t, ExportRow{"2", "", "Bob"}, rows[1])
}

func TestProject_OutOfRangeIsEmpty(t *testing.T) {
	tbl := sampleTable()
	m := NewMapping(schema.MustNew([]string{"A"}), 10)
	require.NoError(t, m.Set("A", 7))

	for _, row := range Project(tbl, m) {
		assert.Equal(t, ExportRow{""}, row)
	}
}

func TestProject_IndependentOfEditHistory(t *testing.T) {
	tbl := sampleTable()
	s := schema.MustNew([]string{"A", "B"})

	m1 := NewMapping(s, tbl.Width())
	require.NoError(t, m1.Set("A", 0))
	require.NoError(t, m1.Set("B", 1))

	m2 := NewMapping(s, tbl.Width())
	require.NoError(t, m2.Set("B", 2))
	require.NoError(t, m2.Set("B", 1))
	require.NoError(t, m2.Set("A", 1))
	require.NoError(t, m2.Set("A", 0))

	assert.Equal(t, Project(tbl, m1), Project(tbl, m2))
}

func TestProject_NoRows(t *testing.T) {
	tbl := &Table{Header: []string{"a"}}
	m := NewMapping(schema.MustNew([]string{"A"}), 1)
	assert.Empty(t, Project(tbl, m))
}

func TestSelectMapped(t *testing.T) {
	tbl := sampleTable()
	m := NewMapping(schema.MustNew([]string{"A", "B", "C"}), tbl.Width())
	require.NoError(t, m.Set("C", 0))
	require.NoError(t, m.Set("A", 2))

	fields, rows := SelectMapped(m, Project(tbl, m))

	assert.Equal(t, []string{"A", "C"}, fields)
	assert.Equal(t, []ExportRow{{"Oslo", "1"}, {"Bergen", "2"}, {"", "3"}}, rows)
}
