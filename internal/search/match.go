// Package search implements fuzzy lookup over the canonical dictionary: a
// length-adaptive similarity threshold, edit-distance and token-sort scoring
// over normalized names, and an in-memory runtime that loads the dictionary
// from the remote store with a local snapshot fallback.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/leobook/canondict/internal/domain"
)

// Threshold returns the minimum similarity a candidate must reach for a
// normalized query of length n runes. Short queries demand near-exact
// matches (0.90 below 4 runes); long queries tolerate more noise (0.70
// above 10 runes); in between the bar drops linearly.
func Threshold(n int) float64 {
	switch {
	case n < 4:
		return 0.90
	case n > 10:
		return 0.70
	default:
		return 0.90 - 0.20*float64(n-4)/6.0
	}
}

// Ratio is the levenshtein similarity of two strings in [0, 1]: identical
// strings score 1, disjoint ones approach 0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// TokenSortRatio compares the two strings with their tokens sorted, so
// "united manchester" still matches "manchester united".
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Score rates how well a normalized query matches an entity: the best of
// plain and token-sort similarity, taken over the display name and every
// alias.
func Score(normQuery string, e domain.CanonicalEntity) float64 {
	best := scoreName(normQuery, e.DisplayName)
	for _, alias := range e.Aliases {
		if s := scoreName(normQuery, alias); s > best {
			best = s
		}
	}
	return best
}

func scoreName(normQuery, name string) float64 {
	normName := domain.NormalizeName(name)
	if normName == "" {
		return 0
	}
	plain := Ratio(normQuery, normName)
	tokenSort := TokenSortRatio(normQuery, normName)
	return max(plain, tokenSort)
}
