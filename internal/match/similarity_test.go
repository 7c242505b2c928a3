package match

import (
	"math"
	"testing"
)

// TestSimilarityIdentical verifies that equal strings always score 1.0.
func TestSimilarityIdentical(t *testing.T) {
	s := NewScorer(FullConfig().Bonuses)
	for _, in := range []string{"приседания", "жим лежа", "push-ups", "а"} {
		if got := s.Similarity(in, in); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", in, in, got)
		}
	}
}

// TestSimilarityEmpty verifies that an empty side scores 0.0 regardless
// of bonuses.
func TestSimilarityEmpty(t *testing.T) {
	s := NewScorer(QuickConfig().Bonuses)
	if got := s.Similarity("", "приседания"); got != 0.0 {
		t.Errorf("Similarity(empty, x) = %v, want 0.0", got)
	}
	if got := s.Similarity("приседания", ""); got != 0.0 {
		t.Errorf("Similarity(x, empty) = %v, want 0.0", got)
	}
	if got := s.Similarity("", ""); got != 0.0 {
		t.Errorf("Similarity(empty, empty) = %v, want 0.0", got)
	}
}

// TestSimilaritySymmetric verifies that argument order never changes the score.
func TestSimilaritySymmetric(t *testing.T) {
	s := NewScorer(QuickConfig().Bonuses)
	pairs := [][2]string{
		{"приседания", "приседания 10 раз"},
		{"жим лежа", "жим"},
		{"отжимания", "наклоны"},
		{"bench press", "bench"},
	}
	for _, p := range pairs {
		ab := s.Similarity(p[0], p[1])
		ba := s.Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

// TestSimilarityBounds verifies that all scores stay within [0, 1] even
// when bonuses would push past the cap.
func TestSimilarityBounds(t *testing.T) {
	s := NewScorer(QuickConfig().Bonuses)
	pairs := [][2]string{
		{"приседания", "приседания 10"},
		{"жим", "жим лежа"},
		{"a", "b"},
		{"отжимания", "отжимания от пола широким хватом"},
	}
	for _, p := range pairs {
		got := s.Similarity(p[0], p[1])
		if got < 0.0 || got > 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}

// TestSimilaritySubstringBonus verifies that whole-containment raises the
// score relative to a scorer without the bonus.
func TestSimilaritySubstringBonus(t *testing.T) {
	plain := NewScorer(Bonuses{})
	boosted := NewScorer(Bonuses{Substring: 0.10})

	a, b := "приседания", "приседания у стены"
	if boosted.Similarity(a, b) <= plain.Similarity(a, b) {
		t.Errorf("substring bonus did not raise score: %v <= %v",
			boosted.Similarity(a, b), plain.Similarity(a, b))
	}
}

// TestSimilarityPrefixBonus verifies the shared-prefix boost on strings
// that agree on their first runes but are not containments.
func TestSimilarityPrefixBonus(t *testing.T) {
	plain := NewScorer(Bonuses{})
	boosted := NewScorer(Bonuses{Prefix: 0.05})

	// Shared 5-rune prefix, no containment either way.
	a, b := "наклоны вбок", "наклоны вперед"
	if boosted.Similarity(a, b) <= plain.Similarity(a, b) {
		t.Errorf("prefix bonus did not raise score: %v <= %v",
			boosted.Similarity(a, b), plain.Similarity(a, b))
	}
}

// TestSimilarityPrefixBonusMinLength verifies the prefix bonus is
// withheld when the shorter string has fewer than three runes, so a
// two-rune fragment scores on the base ratio alone.
func TestSimilarityPrefixBonusMinLength(t *testing.T) {
	s := NewScorer(Bonuses{Prefix: 0.10})

	// "но" vs "нога": base = 2·2/(2+4), prefix must not fire.
	base := 2.0 * 2.0 / 6.0
	if got := s.Similarity("но", "нога"); math.Abs(got-base) > 1e-9 {
		t.Errorf("Similarity(но, нога) = %v, want bare base %v", got, base)
	}

	// At three runes the bonus applies: base 2·3/(3+4) plus 0.10.
	want := 2.0*3.0/7.0 + 0.10
	if got := s.Similarity("ног", "нога"); math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity(ног, нога) = %v, want %v", got, want)
	}
}

// TestSimilarityTokenOverlapBonus verifies the word-overlap term used by
// the quick matcher.
func TestSimilarityTokenOverlapBonus(t *testing.T) {
	plain := NewScorer(Bonuses{})
	boosted := NewScorer(Bonuses{TokenOverlap: 0.10})

	a, b := "жим гантелей лежа", "жим штанги лежа"
	if boosted.Similarity(a, b) <= plain.Similarity(a, b) {
		t.Errorf("token overlap bonus did not raise score: %v <= %v",
			boosted.Similarity(a, b), plain.Similarity(a, b))
	}
}

// TestTokenOverlap verifies the Jaccard computation on word sets.
func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"жим лежа", "жим лежа", 1.0},
		{"жим лежа", "жим стоя", 1.0 / 3.0},
		{"а б", "в г", 0.0},
	}
	for _, tt := range tests {
		if got := tokenOverlap(tt.a, tt.b); got != tt.want {
			t.Errorf("tokenOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
