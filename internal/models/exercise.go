package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercise categories as stored in the exercises table.
const (
	CategoryBreathing     = "breathing"
	CategoryRelaxation    = "relaxation"
	CategoryMeditation    = "meditation"
	CategoryPhysical      = "physical"
	CategoryMindfulness   = "mindfulness"
	CategoryVisualization = "visualization"
	CategoryCognitive     = "cognitive"
	CategoryOther         = "other"
)

// Difficulty levels as stored in the exercises table.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// CategoryDisplay maps category codes to their Russian display names.
var CategoryDisplay = map[string]string{
	CategoryBreathing:     "Дыхательные",
	CategoryRelaxation:    "Расслабление",
	CategoryMeditation:    "Медитация",
	CategoryPhysical:      "Физические",
	CategoryMindfulness:   "Осознанность",
	CategoryVisualization: "Визуализация",
	CategoryCognitive:     "Когнитивные",
	CategoryOther:         "Другое",
}

// DifficultyDisplay maps difficulty codes to their Russian display names.
var DifficultyDisplay = map[string]string{
	DifficultyBeginner:     "Начальный",
	DifficultyIntermediate: "Средний",
	DifficultyAdvanced:     "Продвинутый",
}

// ValidCategory reports whether c is a known category code.
func ValidCategory(c string) bool {
	_, ok := CategoryDisplay[c]
	return ok
}

// ValidDifficulty reports whether d is a known difficulty code.
func ValidDifficulty(d string) bool {
	_, ok := DifficultyDisplay[d]
	return ok
}

// ExerciseRow is a row of the exercises table. Name is the canonical
// English name; NameRU the optional Russian translation.
type ExerciseRow struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	NameRU            string    `json:"name_ru"`
	Description       string    `json:"description"`
	Instructions      string    `json:"instructions"`
	Category          string    `json:"category"`
	Difficulty        string    `json:"difficulty"`
	DurationMin       *int      `json:"duration_min,omitempty"`
	DurationMax       *int      `json:"duration_max,omitempty"`
	Repetitions       *int      `json:"repetitions,omitempty"`
	AudioURL          string    `json:"audio_url,omitempty"`
	VideoURL          string    `json:"video_url,omitempty"`
	ImageURLMain      string    `json:"image_url_main,omitempty"`
	ImageURLSecondary string    `json:"image_url_secondary,omitempty"`
	IsActive          bool      `json:"is_active"`
	UsageCount        int       `json:"usage_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AliasRow is a row of the exercise_aliases table. The (exercise,
// lower(alias)) pair is unique; MatchCount counts confirmed matches
// that resolved through this alias.
type AliasRow struct {
	ID         int64     `json:"id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	Alias      string    `json:"alias"`
	MatchCount int       `json:"match_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExerciseWithAliases bundles an exercise with its known aliases, the
// unit the matching engine scores against.
type ExerciseWithAliases struct {
	ExerciseRow
	Aliases []AliasRow `json:"aliases"`
}

// UsageLogRow is a row of the exercise_usage_logs table, written when a
// user confirms a recognized exercise.
type UsageLogRow struct {
	ID              uuid.UUID `json:"id"`
	ExerciseID      uuid.UUID `json:"exercise_id"`
	UserLogin       string    `json:"user_login"`
	RecognizedText  string    `json:"recognized_text"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	SimilarityScore *float64  `json:"similarity_score,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	RepetitionsDone *int      `json:"repetitions_done,omitempty"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
}

// CategoryCount is one row of the category summary (active exercises only).
type CategoryCount struct {
	Category string `json:"category"`
	Display  string `json:"display"`
	Count    int    `json:"count"`
}
