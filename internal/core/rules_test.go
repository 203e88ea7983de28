package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

func TestAutoMapRules_SurveyExport(t *testing.T) {
	tbl := tableWithHeader("ID", "HILINE_CARRIAGEWAY", "hiline_road", "business_data", "hiline_section", "hiline_lane")

	m, missing := AutoMapRules(tbl, schema.Default(), SurveyRules)

	assert.Empty(t, missing)
	want := map[string]int{
		"ID": 0, "LAGE": 1, "KLASSE": 2, "NUMMER": 2,
		"VNK": 4, "NNK": 4, "FS": 5,
	}
	for _, field := range SurveyRules[3].Fields {
		want[field] = 3
	}
	assert.Equal(t, want, m.Assignments())
	assert.Equal(t, []string{"KLASSE", "NUMMER"}, m.SharedColumns()[2])
}

func TestAutoMapRules_MissingSourcesAndUnknownFields(t *testing.T) {
	tbl := tableWithHeader("hiline_lane", "id", "ID")
	s := schema.MustNew([]string{"ID", "FS", "VNK"})

	m, missing := AutoMapRules(tbl, s, SurveyRules)

	assert.Equal(t, map[string]int{"ID": 1, "FS": 0}, m.Assignments(), "first matching column wins")
	assert.Equal(t, []string{"business_data", "hiline_carriageway", "hiline_road", "hiline_section"}, missing)
}

func TestAutoMapRules_CustomRules(t *testing.T) {
	tbl := tableWithHeader("code", "label")
	s := schema.MustNew([]string{"A", "B", "C"})

	m, missing := AutoMapRules(tbl, s, []MappingRule{
		{Source: "label", Fields: []string{"C", "A", "Nope"}},
		{Source: "absent", Fields: []string{"B"}},
	})

	assert.Equal(t, map[string]int{"A": 1, "C": 1}, m.Assignments())
	assert.Equal(t, []string{"absent"}, missing)
	require.Equal(t, 2, m.Columns())
}
