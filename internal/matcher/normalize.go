// Package matcher implements the deterministic cross-venue matching engine:
// title normalization, entity extraction, pairwise scoring, and greedy group
// assignment. It is pure computation over in-memory snapshots and performs no
// I/O.
package matcher

import (
	"regexp"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes free text for comparison: lower-cases, strips all
// non-word/non-space characters, collapses whitespace, and trims. It is total
// and idempotent.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
