package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"EmployeeID", []string{"employee", "id"}},
		{"Emp_ID", []string{"emp", "id"}},
		{"Full Name", []string{"full", "name"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"Bauw_3", []string{"bauw", "3"}},
		{"ANZ_SPUREN_1", []string{"anz", "spuren", "1"}},
		{"abc123def", []string{"abc", "123", "def"}},
		{"  dept. ", []string{"dept"}},
		{"e-mail/address", []string{"e", "mail", "address"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenizeName(tt.input))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Emp_ID", "empid"},
		{"Full Name", "fullname"},
		{"FullName", "fullname"},
		{"full-name", "fullname"},
		{" FULL  NAME ", "fullname"},
		{"Straße", "straße"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestTokensMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"id", "id", true},
		{"emp", "employee", true},
		{"dept", "department", true},
		{"num", "number", true},
		{"employee", "emp", true},
		{"dep", "department", true},
		{"d", "department", false}, // too short to abbreviate
		{"id", "department", false},
		{"ept", "department", false}, // first letter differs
		{"deptx", "department", false},
		{"rad", "road", false},
		{"sen", "section", false},
		{"ln", "lane", false},
		{"bin", "business", false},
		{"data", "datum", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, tokensMatch(tt.a, tt.b))
		})
	}
}

func TestNameSimilarity_Layers(t *testing.T) {
	tests := []struct {
		a, b      string
		minLen    int
		wantScore float64
		wantKind  MatchKind
	}{
		{"Full Name", "FullName", 2, 1.0, MatchExact},
		{"Name", "FullName", 2, 0.9, MatchContains},
		{"Emp_ID", "EmployeeID", 2, 0.8, MatchTokens},
		{"Dept", "Department", 2, 0.8, MatchTokens},
		{"Emp_Name", "EmployeeID", 2, 0.8 / 3, MatchTokens},
		{"X", "XRay", 2, 0.4, MatchTokens},
		{"X", "XRay", 1, 0.9, MatchContains},
		{"City", "Latitude", 2, 0, MatchNone},
		{"", "Name", 2, 0, MatchNone},
		{"---", "Name", 2, 0, MatchNone},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			score, kind := nameSimilarity(newNameKey(tt.a), newNameKey(tt.b), tt.minLen)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestNameSimilarity_IsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Emp_ID", "EmployeeID"},
		{"Name", "FullName"},
		{"Dept", "Department"},
		{"ANZ_SPUREN", "AnzahlSpuren"},
	}
	for _, p := range pairs {
		ab, _ := nameSimilarity(newNameKey(p[0]), newNameKey(p[1]), 2)
		ba, _ := nameSimilarity(newNameKey(p[1]), newNameKey(p[0]), 2)
		assert.InDelta(t, ab, ba, 1e-9, "%s / %s", p[0], p[1])
	}
}
