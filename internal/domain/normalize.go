package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining diacritical marks, so
// "São" and "Sao" compare equal after normalization.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName prepares an entity name for grouping and matching:
//   - Unicode canonical decomposition with diacritics stripped
//   - lower-cased
//   - internal whitespace collapsed to single spaces
//   - trimmed
//
// It is total: every input maps to some string, possibly "". The same rule
// governs both the build path and the query path.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	if stripped, _, err := transform.String(stripMarks, name); err == nil {
		name = stripped
	}
	name = strings.ToLower(name)
	return strings.Join(strings.Fields(name), " ")
}
