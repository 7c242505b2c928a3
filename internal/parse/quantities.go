package parse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Quantities are the workout parameters recognizable in one utterance.
// The four extractions are independent; absent values stay nil.
type Quantities struct {
	Repetitions     *int
	DurationSeconds *int
	Sets            *int
	WeightKg        *float64
}

// token is one whitespace-delimited word of the lower-cased input.
// Speech output often glues a number to its unit ("40кг"), so the numeric
// head and the attached unit are split out up front.
type token struct {
	text  string // raw token text
	num   string // leading numeric run ("40", "40.5"), "" when none
	unit  string // what follows num, trimmed of punctuation
	start int    // byte offset of the token in the source string
	end   int
}

// tokenize splits lower-cased text on whitespace, keeping byte offsets so
// the command parser can slice the exercise name out of the source.
func tokenize(text string) []token {
	var toks []token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		word := text[start:i]
		num, rest := splitNumeric(word)
		toks = append(toks, token{
			text:  word,
			num:   num,
			unit:  trimPunct(rest),
			start: start,
			end:   i,
		})
	}
	return toks
}

// splitNumeric splits a token into its leading numeric run and the rest.
// A decimal separator ('.' or ',') counts as numeric only between digits.
func splitNumeric(word string) (num, rest string) {
	i := 0
	for i < len(word) {
		c := word[i]
		if c >= '0' && c <= '9' {
			i++
			continue
		}
		if (c == '.' || c == ',') && i > 0 && i+1 < len(word) && word[i+1] >= '0' && word[i+1] <= '9' {
			i += 2
			continue
		}
		break
	}
	return word[:i], word[i:]
}

// trimPunct drops surrounding characters that are neither letters nor digits.
func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// hasStem reports whether the word begins with any of the stems, after
// punctuation trimming. Stems deliberately match inflected forms
// ("подход" covers "подхода", "подходов").
func hasStem(word string, stems ...string) bool {
	w := trimPunct(word)
	for _, stem := range stems {
		if strings.HasPrefix(w, stem) {
			return true
		}
	}
	return false
}

// intValue resolves a token to a positive integer: a clean digit run, or
// a number word. Tokens with a decimal part or a glued unit resolve to 0.
func intValue(t token) int {
	if t.num != "" {
		if t.unit != "" || strings.ContainsAny(t.num, ".,") {
			return 0
		}
		n, err := strconv.Atoi(t.num)
		if err != nil {
			return 0
		}
		return n
	}
	return ResolveNumber(trimPunct(t.text))
}

// Keyword cues, each an explicit predicate so the priority order below
// stays visible and testable in isolation.
func setsCue(word string) bool   { return hasStem(word, "подход", "сет", "серии") }
func repsCue(word string) bool   { return hasStem(word, "раз", "повтор") }
func weightCue(word string) bool { return hasStem(word, "кг", "килограмм", "кило", "грамм") }

// bodyweightCue marks exercise nouns that act as an implicit reps unit
// ("20 приседаний" means 20 reps).
func bodyweightCue(word string) bool { return hasStem(word, "приседан", "отжиман", "наклон") }

// durationUnits in priority order; only the first unit found applies.
var durationUnits = []struct {
	cue        string
	multiplier int
}{
	{"минут", 60},
	{"секунд", 1},
	{"час", 3600},
}

// ExtractQuantities scans free text for repetitions, duration, set count
// and weight. Each quantity is matched by the first cue in its priority
// list; the scan for a quantity stops at its first hit.
func ExtractQuantities(text string) Quantities {
	toks := tokenize(strings.ToLower(text))

	var q Quantities
	for _, cue := range []func(string) bool{repsCue, bodyweightCue} {
		if n, ok := findCount(toks, cue); ok {
			q.Repetitions = &n
			break
		}
	}

	for _, unit := range durationUnits {
		cue := unit.cue
		if n, ok := findCount(toks, func(w string) bool { return hasStem(w, cue) }); ok {
			seconds := n * unit.multiplier
			q.DurationSeconds = &seconds
			break
		}
	}

	if n, ok := findCount(toks, setsCue); ok {
		q.Sets = &n
	}

	if w, _, ok := findWeight(toks, 0); ok {
		q.WeightKg = &w
	}

	return q
}

// findCount returns the first positive integer immediately followed by a
// word matching cue, either as two tokens ("10 раз") or glued ("10раз").
func findCount(toks []token, cue func(string) bool) (int, bool) {
	for i, t := range toks {
		if t.num != "" && t.unit != "" && cue(t.unit) && !strings.ContainsAny(t.num, ".,") {
			if n, err := strconv.Atoi(t.num); err == nil && n > 0 {
				return n, true
			}
		}
		n := intValue(t)
		if n > 0 && i+1 < len(toks) && cue(toks[i+1].text) {
			return n, true
		}
	}
	return 0, false
}

// findWeight returns the first decimal number followed by a weight
// keyword at or after token index from, plus the index of the last token
// the match consumed. Weights are digit-only; number words never carry
// a decimal weight.
func findWeight(toks []token, from int) (float64, int, bool) {
	for i := from; i < len(toks); i++ {
		t := toks[i]
		if t.num == "" {
			continue
		}
		raw := strings.Replace(t.num, ",", ".", 1)
		if t.unit != "" && weightCue(t.unit) {
			if w, err := strconv.ParseFloat(raw, 64); err == nil {
				return w, i, true
			}
		}
		if t.unit == "" && i+1 < len(toks) && weightCue(toks[i+1].text) {
			if w, err := strconv.ParseFloat(raw, 64); err == nil {
				return w, i + 1, true
			}
		}
	}
	return 0, 0, false
}
