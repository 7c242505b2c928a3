package match

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/parse"
)

// CatalogReader is the narrow read-only view of the exercise catalog the
// engine needs. The pgx store implements it for production; tests use an
// in-memory fake.
type CatalogReader interface {
	// ActiveExercises returns active exercises with aliases, optionally
	// filtered by category ("" means all).
	ActiveExercises(ctx context.Context, category string) ([]models.ExerciseWithAliases, error)
	// SearchActive narrows the active catalog by a substring of the
	// language-appropriate name, progressively widening to aliases and
	// both names, and finally to a bounded full scan.
	SearchActive(ctx context.Context, text, language string, limit int) ([]models.ExerciseWithAliases, error)
}

// Config tunes one engine variant. All thresholds are fixed at
// construction; there is no mutable global state.
type Config struct {
	// SuggestThreshold is the minimum score for a candidate to appear at all.
	SuggestThreshold float64
	// AutoMatchThreshold is the minimum top score for BestMatch to return
	// a candidate without user disambiguation (full variant).
	AutoMatchThreshold float64
	// ExactThreshold is the minimum top score to flag an exact match
	// (quick variant).
	ExactThreshold float64
	// MaxSuggestions caps the ranked list length.
	MaxSuggestions int
	// StripStopWords applies stop-word removal on both query and variants
	// (quick variant only).
	StripStopWords bool
	// ScanCap bounds the widened catalog scan of the quick variant.
	ScanCap int
	// Bonuses are the similarity boost weights for this variant.
	Bonuses Bonuses
}

// FullConfig returns the reference configuration of the full matcher.
func FullConfig() Config {
	return Config{
		SuggestThreshold:   0.5,
		AutoMatchThreshold: 0.85,
		ExactThreshold:     0.9,
		MaxSuggestions:     5,
		StripStopWords:     false,
		ScanCap:            100,
		Bonuses:            Bonuses{Substring: 0.10, Prefix: 0.05},
	}
}

// QuickConfig returns the reference configuration of the quick matcher,
// tuned for 1-3 suggestion cards.
func QuickConfig() Config {
	return Config{
		SuggestThreshold:   0.5,
		AutoMatchThreshold: 0.85,
		ExactThreshold:     0.9,
		MaxSuggestions:     5,
		StripStopWords:     true,
		ScanCap:            100,
		Bonuses:            Bonuses{Substring: 0.15, Prefix: 0.10, TokenOverlap: 0.10},
	}
}

// Engine ranks catalog exercises against recognized text. The full and
// quick matchers are the same engine under different Configs, so the
// documented behavioral differences are the only differences.
type Engine struct {
	cfg     Config
	scorer  *Scorer
	catalog CatalogReader
}

// NewEngine creates an Engine over the given catalog.
func NewEngine(cfg Config, catalog CatalogReader) *Engine {
	return &Engine{cfg: cfg, scorer: NewScorer(cfg.Bonuses), catalog: catalog}
}

// Config returns the engine's immutable configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// FindMatches runs the full matching mode: the query is normalized
// without stop-word removal and scored against every variant of every
// active exercise. Quantity extraction runs once over the raw text and
// the same result is attached to each candidate. Candidates below the
// suggest threshold are dropped; the rest come back sorted by descending
// score, catalog order breaking ties, truncated to MaxSuggestions.
func (e *Engine) FindMatches(ctx context.Context, text, category string) ([]models.MatchCandidate, error) {
	query := e.normalizeQuery(text, "")
	if query == "" {
		return nil, nil
	}

	exercises, err := e.catalog.ActiveExercises(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("loading active exercises: %w", err)
	}

	quantities := parse.ExtractQuantities(text)
	params := &models.ExtractedParams{
		Repetitions:     quantities.Repetitions,
		DurationSeconds: quantities.DurationSeconds,
		Sets:            quantities.Sets,
	}

	candidates := e.rank(query, exercises, "", func(c *models.MatchCandidate, ex *models.ExerciseWithAliases) {
		c.Description = ex.Description
		c.Params = params
	})
	return candidates, nil
}

// BestMatch returns the top full-mode candidate when its score clears the
// auto-match threshold, or nil when the caller should disambiguate.
// A nil result is not an error.
func (e *Engine) BestMatch(ctx context.Context, text, category string) (*models.MatchCandidate, error) {
	candidates, err := e.FindMatches(ctx, text, category)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 || candidates[0].Similarity < e.cfg.AutoMatchThreshold {
		return nil, nil
	}
	return &candidates[0], nil
}

// QuickMatches runs the quick matching mode: stop-word-stripped
// normalization on both sides, a store-side narrowed candidate pool, and
// an exact-match flag when the top score clears the exact threshold.
func (e *Engine) QuickMatches(ctx context.Context, text, language string, maxResults int) ([]models.MatchCandidate, bool, error) {
	query := e.normalizeQuery(text, language)
	if query == "" {
		return nil, false, nil
	}

	exercises, err := e.catalog.SearchActive(ctx, strings.ToLower(strings.TrimSpace(text)), language, e.cfg.ScanCap)
	if err != nil {
		return nil, false, fmt.Errorf("searching active exercises: %w", err)
	}

	candidates := e.rank(query, exercises, language, func(c *models.MatchCandidate, ex *models.ExerciseWithAliases) {
		c.DescriptionShort = shortDescription(ex.Description)
	})

	limit := maxResults
	if limit <= 0 || limit > e.cfg.MaxSuggestions {
		limit = e.cfg.MaxSuggestions
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	exact := len(candidates) > 0 && candidates[0].Similarity >= e.cfg.ExactThreshold
	return candidates, exact, nil
}

// rank scores each exercise's variant set against the query and builds
// the sorted, thresholded candidate list. decorate fills mode-specific
// display fields.
func (e *Engine) rank(query string, exercises []models.ExerciseWithAliases, language string,
	decorate func(*models.MatchCandidate, *models.ExerciseWithAliases),
) []models.MatchCandidate {
	var candidates []models.MatchCandidate

	for i := range exercises {
		ex := &exercises[i]

		best := 0.0
		bestVariant := ex.Name
		for _, variant := range e.variants(ex, language) {
			if variant.normalized == "" {
				continue
			}
			if score := e.scorer.Similarity(query, variant.normalized); score > best {
				best = score
				bestVariant = variant.original
			}
		}

		if best < e.cfg.SuggestThreshold {
			continue
		}

		c := models.MatchCandidate{
			ExerciseID:        ex.ID,
			Name:              ex.Name,
			NameRU:            ex.NameRU,
			MatchedVariant:    bestVariant,
			Similarity:        math.Round(best*1000) / 1000,
			Category:          ex.Category,
			CategoryDisplay:   models.CategoryDisplay[ex.Category],
			Difficulty:        ex.Difficulty,
			DifficultyDisplay: models.DifficultyDisplay[ex.Difficulty],
			ImageURLMain:      ex.ImageURLMain,
			ImageURLSecondary: ex.ImageURLSecondary,
			UsageCount:        ex.UsageCount,
		}
		decorate(&c, ex)
		candidates = append(candidates, c)
	}

	// Stable sort keeps catalog order on score ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > e.cfg.MaxSuggestions {
		candidates = candidates[:e.cfg.MaxSuggestions]
	}
	return candidates
}

// variant pairs a stored string with its normalized comparison form.
type variant struct {
	original   string
	normalized string
}

// variants builds the comparison set for one exercise. Both matcher
// variants normalize the stored strings the same way as the query. The
// full mode (empty language) compares the canonical name plus aliases;
// the quick mode also includes the localized name, ordered by the query
// language.
func (e *Engine) variants(ex *models.ExerciseWithAliases, language string) []variant {
	names := make([]string, 0, 2+len(ex.Aliases))
	switch {
	case language == "ru" && ex.NameRU != "":
		names = append(names, ex.NameRU, ex.Name)
	case language != "" && ex.NameRU != "":
		names = append(names, ex.Name, ex.NameRU)
	default:
		names = append(names, ex.Name)
	}
	for _, a := range ex.Aliases {
		names = append(names, a.Alias)
	}

	out := make([]variant, 0, len(names))
	for _, n := range names {
		out = append(out, variant{original: n, normalized: e.normalizeQuery(n, language)})
	}
	return out
}

// normalizeQuery applies this variant's normalization rule.
func (e *Engine) normalizeQuery(text, language string) string {
	if e.cfg.StripStopWords {
		return NormalizeStripStopWords(text, language)
	}
	return Normalize(text)
}

// shortDescription truncates a description for suggestion cards.
func shortDescription(s string) string {
	const limit = 150
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
