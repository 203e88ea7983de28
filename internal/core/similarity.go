package core

import (
	"strings"
	"unicode"
)

// MatchKind names the scoring layer that produced a similarity score.
type MatchKind string

const (
	MatchNone     MatchKind = "none"
	MatchExact    MatchKind = "exact"
	MatchContains MatchKind = "contains"
	MatchTokens   MatchKind = "tokens"
)

// Layer scores. Exact beats containment beats any token overlap.
const (
	scoreExact    = 1.0
	scoreContains = 0.9
	tokenWeight   = 0.8
)

// nameKey is a column or field name prepared for comparison.
type nameKey struct {
	norm   string
	tokens []string
}

func newNameKey(s string) nameKey {
	tokens := tokenizeName(s)
	return nameKey{
		norm:   strings.Join(tokens, ""),
		tokens: tokens,
	}
}

// NormalizeName lowercases s and drops whitespace, punctuation and separators.
//
//	"Emp_ID"    -> "empid"
//	"Full Name" -> "fullname"
func NormalizeName(s string) string {
	return newNameKey(s).norm
}

// tokenizeName splits s into lowercase word tokens. Any rune that is not a
// letter or digit separates tokens, as do camelCase humps, the end of an
// acronym, and letter/digit boundaries.
//
//	"EmployeeID" -> ["employee", "id"]
//	"XMLParser"  -> ["xml", "parser"]
//	"Bauw_3"     -> ["bauw", "3"]
func tokenizeName(s string) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && startsToken(runes, i) {
			flush()
		}
		cur.WriteRune(r)
	}
	flush()

	return tokens
}

// startsToken reports whether a new token begins at runes[i].
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]

	if unicode.IsDigit(r) != unicode.IsDigit(prev) && (unicode.IsLetter(prev) || unicode.IsDigit(prev)) {
		return true
	}
	if unicode.IsUpper(r) && unicode.IsLower(prev) {
		return true
	}
	// End of acronym: "XMLParser" splits before 'P'.
	if unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}
	return false
}

// nameSimilarity scores two prepared names in [0, 1].
func nameSimilarity(a, b nameKey, minContainLen int) (float64, MatchKind) {
	if a.norm == "" || b.norm == "" {
		return 0, MatchNone
	}
	if a.norm == b.norm {
		return scoreExact, MatchExact
	}

	short, long := a.norm, b.norm
	if len([]rune(short)) > len([]rune(long)) {
		short, long = long, short
	}
	if len([]rune(short)) >= minContainLen && strings.Contains(long, short) {
		return scoreContains, MatchContains
	}

	if overlap := tokenOverlap(a.tokens, b.tokens); overlap > 0 {
		return tokenWeight * overlap, MatchTokens
	}
	return 0, MatchNone
}

// tokenOverlap is matched tokens divided by the union of both token sets.
// Each token pairs with at most one token of the other set.
func tokenOverlap(a, b []string) float64 {
	a, b = uniqueTokens(a), uniqueTokens(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	used := make([]bool, len(b))
	matched := 0
	for _, ta := range a {
		for j, tb := range b {
			if !used[j] && tokensMatch(ta, tb) {
				used[j] = true
				matched++
				break
			}
		}
	}

	union := len(a) + len(b) - matched
	return float64(matched) / float64(union)
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// minAbbrevPrefix is how many leading runes an abbreviation must share with
// the word it abbreviates.
const minAbbrevPrefix = 3

// tokensMatch reports whether two tokens are equal or one abbreviates the
// other: the shorter shares the first minAbbrevPrefix runes of the longer
// and its remaining runes appear in order ("emp"/"employee",
// "dept"/"department"). Short codes such as "rad" or "ln" only match exactly.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}

	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) < minAbbrevPrefix || string(short[:minAbbrevPrefix]) != string(long[:minAbbrevPrefix]) {
		return false
	}

	j := minAbbrevPrefix
	for i := minAbbrevPrefix; i < len(long) && j < len(short); i++ {
		if long[i] == short[j] {
			j++
		}
	}
	return j == len(short)
}
