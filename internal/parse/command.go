package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/repvoice/internal/models"
)

// Parse classifies one spoken workout command. Patterns are tried in
// fixed priority order: the complex heterogeneous-groups pattern
// ("жим 3 подхода: 2 из них 4 раза по 40кг и один 4 раза по 50кг"),
// then the simple uniform pattern ("жим лежа 5 подходов по 40кг на
// 10 раз"), then the unstructured fallback. Parsing never fails; an
// unrecognized command comes back with IsStructured false and the whole
// lower-cased text as the exercise name.
func Parse(text string) models.ParsedCommand {
	lowered := strings.ToLower(strings.TrimSpace(text))

	cmd := models.ParsedCommand{
		RawText: lowered,
		Sets:    []models.SetSpec{},
	}
	if lowered == "" {
		return cmd
	}

	toks := tokenize(lowered)

	if name, sets, ok := parseComplex(lowered, toks); ok {
		cmd.ExerciseName = name
		cmd.Sets = sets
		cmd.IsStructured = true
		return cmd
	}

	if name, sets, ok := parseSimple(lowered, toks); ok {
		cmd.ExerciseName = name
		cmd.Sets = sets
		cmd.IsStructured = true
		return cmd
	}

	cmd.ExerciseName = lowered
	return cmd
}

// setsMarker locates a "<count> <sets-keyword>" pair. colonEnd is the
// byte offset just past the colon that follows the keyword, or -1 when
// there is none.
type setsMarker struct {
	count    int
	start    int // byte offset where the count token begins
	colonEnd int
}

// findSetsMarker scans tokens from index from and returns the first sets
// marker, requiring a trailing colon when needColon is set.
func findSetsMarker(toks []token, needColon bool) (setsMarker, bool) {
	for i := 0; i < len(toks)-1; i++ {
		n := intValue(toks[i])
		if n <= 0 || !setsCue(toks[i+1].text) {
			continue
		}

		m := setsMarker{count: n, start: toks[i].start, colonEnd: -1}
		kw := toks[i+1]
		switch {
		case strings.HasSuffix(kw.text, ":"):
			m.colonEnd = kw.end
		case i+2 < len(toks) && strings.HasPrefix(toks[i+2].text, ":"):
			m.colonEnd = toks[i+2].start + 1
		}

		if needColon && m.colonEnd < 0 {
			continue
		}
		return m, true
	}
	return setsMarker{}, false
}

// parseComplex handles the heterogeneous-groups pattern: an explicit
// total set count with a colon, then groups separated by "и", each
// describing a run of identical sets. Groups that match no sub-pattern
// are skipped; zero sets overall means the attempt failed and the caller
// falls through to the simple pattern.
func parseComplex(text string, toks []token) (string, []models.SetSpec, bool) {
	marker, ok := findSetsMarker(toks, true)
	if !ok {
		return "", nil, false
	}

	name := strings.TrimSpace(text[:marker.start])
	rest := strings.TrimSpace(text[marker.colonEnd:])

	var sets []models.SetSpec
	setNumber := 1
	for _, group := range splitGroups(tokenize(rest)) {
		count, reps, weight, ok := matchGroup(group)
		if !ok {
			continue
		}
		for ; count > 0; count-- {
			r, w := reps, weight
			sets = append(sets, models.SetSpec{SetNumber: setNumber, Reps: &r, WeightKg: &w})
			setNumber++
		}
	}

	if len(sets) == 0 {
		return "", nil, false
	}
	return name, sets, true
}

// splitGroups cuts the token stream on the standalone conjunction "и".
func splitGroups(toks []token) [][]token {
	var groups [][]token
	cur := []token{}
	for _, t := range toks {
		if trimPunct(t.text) == "и" {
			if len(cur) > 0 {
				groups = append(groups, cur)
				cur = []token{}
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// matchGroup matches one group against the two sub-patterns, connector
// form first:
//
//	"<count> из них <reps> раз по <weight>кг"
//	"<count> <reps> раз по <weight>кг"
func matchGroup(g []token) (count, reps int, weight float64, ok bool) {
	if c, r, w, found := scanGroup(g, true); found {
		return c, r, w, true
	}
	return scanGroup(g, false)
}

// scanGroup tries the sub-pattern at every start position. When
// withConnector is set, the count must be followed by "из них" or a
// sets keyword before the reps clause.
func scanGroup(g []token, withConnector bool) (int, int, float64, bool) {
	for j := range g {
		count := intValue(g[j])
		if count <= 0 {
			continue
		}

		k := j + 1
		if withConnector {
			switch {
			case k+1 < len(g) && trimPunct(g[k].text) == "из" && trimPunct(g[k+1].text) == "них":
				k += 2
			case k < len(g) && setsCue(g[k].text):
				k++
			default:
				continue
			}
		}

		if k+1 >= len(g) {
			continue
		}
		reps := intValue(g[k])
		if reps <= 0 || !repsCue(g[k+1].text) {
			continue
		}

		m := k + 2
		if m < len(g) && trimPunct(g[m].text) == "по" {
			m++
		}
		if w, _, found := findWeight(g, m); found {
			return count, reps, w, true
		}
	}
	return 0, 0, 0, false
}

// parseSimple handles the uniform pattern: exercise name, then a set
// count, with optional reps and weight anywhere in the text. All emitted
// sets are identical.
func parseSimple(text string, toks []token) (string, []models.SetSpec, bool) {
	marker, ok := findSetsMarker(toks, false)
	if !ok {
		return "", nil, false
	}

	name := strings.TrimSpace(text[:marker.start])
	if name == "" {
		return "", nil, false
	}

	var reps *int
	for _, cue := range []func(string) bool{repsCue, bodyweightCue} {
		if n, found := findCount(toks, cue); found {
			reps = &n
			break
		}
	}
	var weight *float64
	if w, _, found := findWeight(toks, 0); found {
		weight = &w
	}

	sets := make([]models.SetSpec, 0, marker.count)
	for i := 1; i <= marker.count; i++ {
		s := models.SetSpec{SetNumber: i}
		if reps != nil {
			r := *reps
			s.Reps = &r
		}
		if weight != nil {
			w := *weight
			s.WeightKg = &w
		}
		sets = append(sets, s)
	}
	return name, sets, true
}

// FormatSummary renders a set sequence for display. Uniform sets collapse
// into one aggregate phrase; mixed sets are listed one clause per set.
// Display only — the output does not round-trip through Parse.
func FormatSummary(sets []models.SetSpec) string {
	if len(sets) == 0 {
		return ""
	}

	first := sets[0]
	uniform := true
	for _, s := range sets[1:] {
		if !eqIntPtr(s.Reps, first.Reps) || !eqFloatPtr(s.WeightKg, first.WeightKg) {
			uniform = false
			break
		}
	}

	if uniform {
		parts := []string{fmt.Sprintf("%d подходов", len(sets))}
		if first.Reps != nil {
			parts = append(parts, fmt.Sprintf("по %d раз", *first.Reps))
		}
		if first.WeightKg != nil {
			parts = append(parts, "с весом "+formatWeight(*first.WeightKg)+"кг")
		}
		return strings.Join(parts, " ")
	}

	clauses := make([]string, 0, len(sets))
	for _, s := range sets {
		parts := []string{fmt.Sprintf("Подход %d", s.SetNumber)}
		if s.Reps != nil {
			parts = append(parts, fmt.Sprintf("%d раз", *s.Reps))
		}
		if s.WeightKg != nil {
			parts = append(parts, formatWeight(*s.WeightKg)+"кг")
		}
		clauses = append(clauses, strings.Join(parts, " - "))
	}
	return strings.Join(clauses, "; ")
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
