// Package parse turns free-form spoken workout commands into structured
// set sequences. It covers number-word resolution, quantity extraction
// (reps, duration, set count, weight) and the two command patterns the
// voice frontend produces.
package parse

import (
	"strconv"
	"strings"
)

// numberWords resolves spoken numbers 1..20. Russian entries include the
// case-inflected forms that speech recognition produces; English entries
// cover the plain cardinal words.
var numberWords = map[string]int{
	"один": 1, "одна": 1, "одного": 1, "одному": 1,
	"два": 2, "две": 2, "двух": 2,
	"три": 3, "трёх": 3, "трех": 3,
	"четыре": 4, "четырёх": 4, "четырех": 4,
	"пять": 5, "пяти": 5,
	"шесть": 6, "шести": 6,
	"семь": 7, "семи": 7,
	"восемь": 8, "восьми": 8,
	"девять": 9, "девяти": 9,
	"десять": 10, "десяти": 10,
	"одиннадцать": 11, "одиннадцати": 11,
	"двенадцать": 12, "двенадцати": 12,
	"тринадцать": 13, "тринадцати": 13,
	"четырнадцать": 14, "четырнадцати": 14,
	"пятнадцать": 15, "пятнадцати": 15,
	"шестнадцать": 16, "шестнадцати": 16,
	"семнадцать": 17, "семнадцати": 17,
	"восемнадцать": 18, "восемнадцати": 18,
	"девятнадцать": 19, "девятнадцати": 19,
	"двадцать": 20, "двадцати": 20,

	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "twenty": 20,
}

// ResolveNumber converts a token to an integer: digit strings parse
// directly, known number words resolve through the table, and anything
// else resolves to 0. Callers treat 0 as "no number here", never as an
// error.
func ResolveNumber(token string) int {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return 0
	}
	if n, err := strconv.Atoi(t); err == nil && n >= 0 {
		return n
	}
	return numberWords[t]
}
