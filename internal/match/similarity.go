package match

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Bonuses are the heuristic boosts added on top of the base ratio. The
// full and quick matchers historically use slightly different constants,
// so each engine carries its own set instead of sharing one.
type Bonuses struct {
	// Substring is added when either string contains the other whole.
	Substring float64
	// Prefix is added when the first min(5, shorter length) runes match
	// and the shorter string has at least 3 runes.
	Prefix float64
	// TokenOverlap scales the Jaccard overlap of the two word sets.
	// Zero disables the term (the full matcher does not use it).
	TokenOverlap float64
}

// Scorer computes a bounded [0,1] similarity between two strings already
// normalized by the caller. The scheme is symmetric: swapping the
// arguments never changes the score.
type Scorer struct {
	bonuses Bonuses
}

// NewScorer returns a Scorer with the given bonus weights.
func NewScorer(b Bonuses) *Scorer {
	return &Scorer{bonuses: b}
}

// Similarity returns the base longest-common-subsequence ratio between a
// and b plus the configured bonuses, capped at 1.0. Either side empty
// yields 0.0 regardless of bonuses.
func (s *Scorer) Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	ra, rb := []rune(a), []rune(b)
	base := 2.0 * float64(edlib.LCS(a, b)) / float64(len(ra)+len(rb))

	bonus := 0.0
	if strings.Contains(a, b) || strings.Contains(b, a) {
		bonus += s.bonuses.Substring
	}

	// The prefix bonus needs at least 3 runes on the shorter side; very
	// short strings share prefixes too easily to mean anything.
	n := min(5, len(ra), len(rb))
	if n >= 3 && string(ra[:n]) == string(rb[:n]) {
		bonus += s.bonuses.Prefix
	}

	if s.bonuses.TokenOverlap > 0 {
		bonus += s.bonuses.TokenOverlap * tokenOverlap(a, b)
	}

	if score := base + bonus; score < 1.0 {
		return score
	}
	return 1.0
}

// tokenOverlap is the Jaccard index of the two word sets.
func tokenOverlap(a, b string) float64 {
	setA := map[string]bool{}
	for _, w := range strings.Fields(a) {
		setA[w] = true
	}
	setB := map[string]bool{}
	for _, w := range strings.Fields(b) {
		setB[w] = true
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	common := 0
	for w := range setA {
		if setB[w] {
			common++
		}
	}
	return float64(common) / float64(len(setA)+len(setB)-common)
}
