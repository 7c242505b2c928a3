// Package match contains the exercise matching core: text normalization,
// a bounded similarity scorer, and the ranking engine that scores a query
// against every known variant (name, localized name, alias) of the catalog.
package match

import (
	"strings"
	"unicode"
)

// Per-language stop-word sets. Only the quick matcher strips stop-words;
// the full matcher compares complete variants.
var stopWords = map[string]map[string]bool{
	"ru": {"упражнение": true, "на": true, "для": true, "с": true, "и": true, "в": true, "по": true},
	"en": {"exercise": true, "for": true, "with": true, "on": true, "the": true, "and": true, "a": true},
}

// Normalize lower-cases text, drops everything except letters, digits,
// whitespace and hyphens, collapses whitespace runs and trims. It is
// idempotent and never fails; malformed input degrades to "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeStripStopWords normalizes text and additionally removes the
// language's stop-words. Unknown languages fall back to Russian, the
// primary input language.
func NormalizeStripStopWords(text, language string) string {
	words := stopWords[language]
	if words == nil {
		words = stopWords["ru"]
	}

	kept := []string{}
	for _, w := range strings.Fields(Normalize(text)) {
		if !words[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
