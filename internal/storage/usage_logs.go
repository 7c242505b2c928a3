package storage

import (
	"context"
	"fmt"

	"github.com/claude/repvoice/internal/models"
	"github.com/google/uuid"
)

// InsertUsageLog records a confirmed recognition and returns the log id.
func (db *DB) InsertUsageLog(ctx context.Context, log *models.UsageLogRow) (uuid.UUID, error) {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercise_usage_logs
			(id, exercise_id, user_login, recognized_text,
			 confidence_score, similarity_score, duration_seconds, repetitions_done, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		log.ID, log.ExerciseID, log.UserLogin, log.RecognizedText,
		log.ConfidenceScore, log.SimilarityScore, log.DurationSeconds,
		log.RepetitionsDone, log.Completed).Scan(&log.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting usage log: %w", err)
	}
	return log.ID, nil
}

// HistoryEntry is a usage-log row joined with the exercise it refers to.
type HistoryEntry struct {
	models.UsageLogRow
	ExerciseName   string `json:"exercise_name"`
	ExerciseNameRU string `json:"exercise_name_ru"`
}

// ExerciseHistory returns a user's confirmed recognitions, newest first.
func (db *DB) ExerciseHistory(ctx context.Context, userLogin string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT l.id, l.exercise_id, l.user_login, l.recognized_text,
			l.confidence_score, l.similarity_score, l.duration_seconds,
			l.repetitions_done, l.completed, l.created_at,
			e.name, e.name_ru
		 FROM exercise_usage_logs l
		 JOIN exercises e ON e.id = l.exercise_id
		 WHERE l.user_login = $1
		 ORDER BY l.created_at DESC
		 LIMIT $2`, userLogin, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var result []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.ExerciseID, &h.UserLogin, &h.RecognizedText,
			&h.ConfidenceScore, &h.SimilarityScore, &h.DurationSeconds,
			&h.RepetitionsDone, &h.Completed, &h.CreatedAt,
			&h.ExerciseName, &h.ExerciseNameRU); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}
