package matcher

import "strings"

// stopWords are excluded from title token sets so similarity reflects the
// distinguishing words of a question rather than connective filler.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "in": true, "to": true, "for": true, "is": true,
	"on": true, "at": true, "by": true, "be": true, "it": true,
	"will": true, "vs": true, "with": true, "this": true, "that": true,
}

// TokenSet splits normalized text into keyword tokens, dropping stop words
// and tokens shorter than three characters.
func TokenSet(normalized string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(normalized) {
		if len(word) < 3 || stopWords[word] {
			continue
		}
		tokens[word] = true
	}
	return tokens
}

// TitleSimilarity computes the overlap coefficient between the keyword token
// sets of two titles: |A ∩ B| / min(|A|, |B|). It is symmetric, bounded to
// [0,1], and returns 0 when either title has no keyword tokens.
func TitleSimilarity(a, b string) float64 {
	ta := TokenSet(Normalize(a))
	tb := TokenSet(Normalize(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}

	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	return float64(shared) / float64(smaller)
}
