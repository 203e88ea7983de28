package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

func TestMapping_StartsUnmapped(t *testing.T) {
	m := NewMapping(schema.MustNew([]string{"A", "B"}), 3)

	for _, f := range []string{"A", "B"} {
		col, err := m.Get(f)
		require.NoError(t, err)
		assert.Equal(t, Unmapped, col)
	}
	assert.False(t, m.IsComplete())
	assert.Zero(t, m.MappedCount())
}

func TestMapping_SetErrors(t *testing.T) {
	m := NewMapping(schema.MustNew([]string{"A"}), 2)

	assert.ErrorIs(t, m.Set("Nope", 0), ErrUnknownField)
	assert.ErrorIs(t, m.Set("A", 2), ErrColumnOutOfRange)
	assert.ErrorIs(t, m.Set("A", -5), ErrColumnOutOfRange)

	_, err := m.Get("Nope")
	assert.ErrorIs(t, err, ErrUnknownField)

	col, _ := m.Get("A")
	assert.Equal(t, Unmapped, col, "failed Set leaves the entry untouched")
}

func TestMapping_ManyToOne(t *testing.T) {
	m := NewMapping(schema.MustNew([]string{"fieldA", "fieldB", "fieldC"}), 3)

	require.NoError(t, m.Set("fieldA", 2))
	require.NoError(t, m.Set("fieldB", 2))

	assert.Equal(t, map[string]int{"fieldA": 2, "fieldB": 2}, m.Assignments())
	assert.Equal(t, map[int][]string{2: {"fieldA", "fieldB"}}, m.SharedColumns())
	assert.Equal(t, []string{"fieldA", "fieldB"}, m.MappedFields())
}

func TestMapping_CompleteClearUnset(t *testing.T) {
	m := NewMapping(schema.MustNew([]string{"A", "B"}), 2)

	require.NoError(t, m.Set("A", 0))
	assert.False(t, m.IsComplete())
	require.NoError(t, m.Set("B", 0))
	assert.True(t, m.IsComplete())

	require.NoError(t, m.Unset("B"))
	assert.False(t, m.IsComplete())
	assert.Equal(t, 1, m.MappedCount())

	m.Clear()
	assert.Zero(t, m.MappedCount())
}

func TestMapping_CloneIsIndependent(t *testing.T) {
	m := NewMapping(schema.MustNew([]string{"A"}), 2)
	require.NoError(t, m.Set("A", 1))

	c := m.Clone()
	require.NoError(t, c.Set("A", 0))

	col, _ := m.Get("A")
	assert.Equal(t, 1, col)
}

func TestMapping_List(t *testing.T) {
	m := NewMapping(schema.MustNew([]string{"A", "B"}), 2)
	require.NoError(t, m.Set("B", 1))

	assert.Equal(t, []FieldAssignment{
		{Field: "A", Column: Unmapped},
		{Field: "B", Column: 1, Header: "y"},
	}, m.List([]string{"x", "y"}))
}
