package digest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stop-words carry no story identity and are ignored when comparing titles.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "in": true, "on": true, "of": true,
	"for": true, "to": true, "and": true, "at": true, "by": true, "with": true,
	"is": true, "are": true, "was": true, "after": true, "over": true,
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// titleSimilarity is the single fuzzy-match function used for duplicate
// detection: token-set Jaccard overlap of the two normalized titles,
// in [0, 1].
func titleSimilarity(a, b string) float64 {
	ta := titleTokens(a)
	tb := titleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if tb[tok] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// titleTokens lower-cases, folds accents, drops punctuation, and removes
// stop-words, returning the remaining token set.
func titleTokens(s string) map[string]bool {
	if folded, _, err := transform.String(accentFolder, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(b.String()) {
		if stopWords[tok] {
			continue
		}
		tokens[tok] = true
	}
	return tokens
}
