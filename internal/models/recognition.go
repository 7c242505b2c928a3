package models

import "github.com/google/uuid"

// ExtractedParams holds workout quantities found in free text alongside a
// match query. Absent quantities stay nil, never zero.
type ExtractedParams struct {
	Repetitions     *int     `json:"repetitions"`
	DurationSeconds *int     `json:"duration_seconds"`
	Sets            *int     `json:"sets"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
}

// MatchCandidate is one ranked suggestion produced by the matching engine.
// Display fields are denormalized from the exercise record so callers can
// render suggestion cards without a second lookup. Not persisted.
type MatchCandidate struct {
	ExerciseID        uuid.UUID        `json:"exercise_id"`
	Name              string           `json:"name"`
	NameRU            string           `json:"name_ru"`
	MatchedVariant    string           `json:"matched_variant"`
	Similarity        float64          `json:"similarity"`
	Category          string           `json:"category"`
	CategoryDisplay   string           `json:"category_display"`
	Difficulty        string           `json:"difficulty"`
	DifficultyDisplay string           `json:"difficulty_display"`
	Description       string           `json:"description,omitempty"`
	DescriptionShort  string           `json:"description_short,omitempty"`
	ImageURLMain      string           `json:"image_url_main,omitempty"`
	ImageURLSecondary string           `json:"image_url_secondary,omitempty"`
	UsageCount        int              `json:"usage_count"`
	Params            *ExtractedParams `json:"extracted_params,omitempty"`
}

// SetSpec is one execution block of an exercise inside a parsed workout
// command. Reps and WeightKg are omitted, not zeroed, when the command
// did not specify them.
type SetSpec struct {
	SetNumber int      `json:"set_number"`
	Reps      *int     `json:"reps,omitempty"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
}

// ParsedCommand is the outcome of parsing one spoken workout command.
// When IsStructured is false, Sets is empty and ExerciseName carries the
// whole lower-cased input. When true, SetNumber values run 1..N with no
// gaps.
type ParsedCommand struct {
	ExerciseName string    `json:"exercise_name"`
	Sets         []SetSpec `json:"sets"`
	RawText      string    `json:"raw_text"`
	IsStructured bool      `json:"is_structured"`
}
