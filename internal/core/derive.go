package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Derivation rewrites the value of Field when the field reads a column
// named Source (case-insensitive). Apply receives the raw cell text.
type Derivation struct {
	Field  string
	Source string
	Apply  func(string) string
}

// Derive applies ds to rows projected through m, where header is the
// source table header. Rows are copied, never changed in place; when no
// derivation applies rows is returned as is.
func Derive(m *Mapping, header []string, rows []ExportRow, ds []Derivation) []ExportRow {
	apply := make([]func(string) string, len(m.assign))
	found := false
	for i, col := range m.assign {
		if col < 0 || col >= len(header) {
			continue
		}
		field := m.schema.Field(i)
		for _, d := range ds {
			if d.Field == field && headerKey(d.Source) == headerKey(header[col]) {
				apply[i] = d.Apply
				found = true
				break
			}
		}
	}
	if !found {
		return rows
	}

	out := make([]ExportRow, len(rows))
	for r, row := range rows {
		derived := make(ExportRow, len(row))
		copy(derived, row)
		for i, fn := range apply {
			if fn != nil && i < len(derived) {
				derived[i] = fn(derived[i])
			}
		}
		out[r] = derived
	}
	return out
}

// SurveyDerivations split the packed columns of the hiline survey export:
// the section code into its two node numbers, the road code into class and
// number, and business_data JSON into its measured values.
func SurveyDerivations() []Derivation {
	ds := []Derivation{
		{Field: "VNK", Source: "hiline_section", Apply: firstHalf},
		{Field: "NNK", Source: "hiline_section", Apply: secondHalf},
		{Field: "KLASSE", Source: "hiline_road", Apply: roadClass},
		{Field: "NUMMER", Source: "hiline_road", Apply: roadNumber},
	}

	groups := []struct {
		path   []string
		fields []string
	}{
		{[]string{"survey_result", "tp3"}, []string{"EFLI", "AFLI", "RISS", "ONA"}},
		{[]string{"evaluation_result", "tp3"}, []string{
			"ZWAUS", "ZWBIN", "ZWONA", "ZWRSF", "ZWSCH", "ZWAFLI",
			"ZWBORD", "ZWEFLI", "ZWRISS", "ZWWURZ",
		}},
		{[]string{"evaluation_result", "overall"}, []string{"GW", "GEB", "SUB"}},
	}
	for _, g := range groups {
		for _, field := range g.fields {
			path := append(append([]string(nil), g.path...), strings.ToLower(field))
			ds = append(ds, Derivation{
				Field:  field,
				Source: "business_data",
				Apply:  func(s string) string { return jsonPath(s, path) },
			})
		}
	}
	return ds
}

// firstHalf returns the first half of s by runes; "" and one-rune values
// pass through.
//
//	"12345678" -> "1234"
func firstHalf(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return s
	}
	return string(r[:len(r)/2])
}

// secondHalf returns the rest of s after firstHalf.
func secondHalf(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return s
	}
	return string(r[len(r)/2:])
}

// roadClass upper-cases the class letter and drops leading zeros from a
// numeric remainder.
//
//	"l0048" -> "L48"
//	"b12a"  -> "B12a"
func roadClass(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return ""
	}
	letter := string(unicode.ToUpper(r[0]))
	rest := string(r[1:])
	if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
		return letter + strconv.Itoa(n)
	}
	return letter + rest
}

// roadNumber is the road code without its class letter.
//
//	"l0048" -> "0048"
func roadNumber(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return ""
	}
	return string(r[1:])
}

// jsonPath reads a nested value from a JSON object. Missing keys, invalid
// JSON and null yield "". Strings are returned unquoted, numbers as
// written, other values as compact JSON.
func jsonPath(doc string, path []string) string {
	dec := json.NewDecoder(strings.NewReader(doc))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		if v, ok = obj[key]; !ok {
			return ""
		}
	}

	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(val); err != nil {
			return ""
		}
		return strings.TrimSpace(buf.String())
	}
}
