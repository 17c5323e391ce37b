package validate

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultNamingThreshold is the minimum similarity ratio at which two field
// names from different layers are treated as the same field. The value is a
// tuning parameter surfaced through configuration; the default errs toward
// not forcing false matches.
const DefaultNamingThreshold = 0.85

// tokens splits an identifier on case, underscore, hyphen and digit
// boundaries and lowercases the parts, so `created_at`, `createdAt` and
// `Created-At` all normalize identically.
func tokens(name string) []string {
	var parts []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, strings.ToLower(current.String()))
			current.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return parts
}

// normalize joins an identifier's tokens into its canonical lowercase form.
func normalize(name string) string {
	return strings.Join(tokens(name), "_")
}

// similarity computes a 0..1 edit-distance ratio between two normalized
// names using diffmatchpatch's Levenshtein measure.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(distance)/float64(longest)
}

// correspond reports whether two field names refer to the same field: either
// their normalized forms agree, or they are within the similarity threshold.
func correspond(a, b string, threshold float64) bool {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return true
	}
	return similarity(na, nb) >= threshold
}

// sameSpelling reports whether two names agree character for character.
// Corresponding fields with different spellings differ only in casing
// convention, which the naming rule flags as a warning.
func sameSpelling(a, b string) bool {
	return a == b
}

// camelCase renders a name in the camelCase convention, used for
// suggestion text in naming issues.
func camelCase(name string) string {
	parts := tokens(name)
	if len(parts) == 0 {
		return name
	}
	var out strings.Builder
	out.WriteString(parts[0])
	for _, part := range parts[1:] {
		out.WriteString(strings.ToUpper(part[:1]))
		out.WriteString(part[1:])
	}
	return out.String()
}
