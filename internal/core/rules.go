package core

import (
	"sort"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

// MappingRule sends one named source column to several target fields.
type MappingRule struct {
	Source string   `yaml:"source" json:"source"`
	Fields []string `yaml:"fields" json:"fields"`
}

// SurveyRules map the columns of the hiline road survey export onto the
// default schema. Combine with SurveyDerivations to split the packed
// columns into their parts.
var SurveyRules = []MappingRule{
	{Source: "ID", Fields: []string{"ID"}},
	{Source: "hiline_carriageway", Fields: []string{"LAGE"}},
	{Source: "hiline_road", Fields: []string{"KLASSE", "NUMMER"}},
	{Source: "business_data", Fields: []string{
		"EFLI", "AFLI", "RISS", "ZWAUS", "ZWBIN", "ZWONA",
		"ZWRSF", "ZWSCH", "ZWAFLI", "ZWBORD", "ZWEFLI",
		"ZWRISS", "ZWWURZ", "GW", "GEB", "SUB",
	}},
	{Source: "hiline_section", Fields: []string{"VNK", "NNK"}},
	{Source: "hiline_lane", Fields: []string{"FS"}},
}

// AutoMapRules builds a fresh mapping from rules. A rule applies when its
// source names a header column (case-insensitive, first occurrence wins);
// its fields outside the schema are skipped. It returns the mapping and the
// sources that named no column, sorted.
func AutoMapRules(t *Table, s *schema.Schema, rules []MappingRule) (*Mapping, []string) {
	columns := headerColumns(t.Header)

	m := NewMapping(s, t.Width())
	var missing []string
	for _, rule := range rules {
		col, ok := columns[headerKey(rule.Source)]
		if !ok {
			missing = append(missing, rule.Source)
			continue
		}
		for _, field := range rule.Fields {
			if i, known := s.Index(field); known {
				m.assign[i] = col
			}
		}
	}

	sort.Strings(missing)
	return m, missing
}

// headerColumns indexes header names case-insensitively; the first column
// with a given name wins.
func headerColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := headerKey(h)
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}
	return columns
}
