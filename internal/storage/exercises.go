package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/repvoice/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const exerciseColumns = `id, name, name_ru, description, instructions, category, difficulty,
	 duration_min, duration_max, repetitions, audio_url, video_url,
	 image_url_main, image_url_secondary, is_active, usage_count, created_at, updated_at`

// ActiveExercises returns active exercises with their aliases, optionally
// filtered by category. Ordered by usage (popular first) then name, which
// is the tie-break order the matching engine relies on.
func (db *DB) ActiveExercises(ctx context.Context, category string) ([]models.ExerciseWithAliases, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE is_active`
	args := []any{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY usage_count DESC, name ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying active exercises: %w", err)
	}
	defer rows.Close()

	exercises, err := scanExerciseRows(rows)
	if err != nil {
		return nil, err
	}
	return db.attachAliases(ctx, exercises)
}

// SearchActive narrows the active catalog for the quick matcher with a
// progressively widening substring search: the language-appropriate name
// first, then aliases and both names, and finally a bounded full scan.
// The scan cap is a performance guard, not a correctness requirement.
func (db *DB) SearchActive(ctx context.Context, text, language string, limit int) ([]models.ExerciseWithAliases, error) {
	if limit <= 0 {
		limit = 100
	}
	nameCol := "name"
	if language == "ru" {
		nameCol = "name_ru"
	}

	queries := []struct {
		sql  string
		args []any
	}{
		{
			`SELECT ` + exerciseColumns + ` FROM exercises
			 WHERE is_active AND ` + nameCol + ` ILIKE '%' || $1 || '%'
			 ORDER BY usage_count DESC, name ASC LIMIT 20`,
			[]any{text},
		},
		{
			`SELECT ` + exerciseColumns + ` FROM exercises e
			 WHERE e.is_active AND (
				e.name ILIKE '%' || $1 || '%'
				OR e.name_ru ILIKE '%' || $1 || '%'
				OR EXISTS (
					SELECT 1 FROM exercise_aliases a
					WHERE a.exercise_id = e.id AND a.alias ILIKE '%' || $1 || '%'
				)
			 )
			 ORDER BY e.usage_count DESC, e.name ASC LIMIT 20`,
			[]any{text},
		},
		{
			`SELECT ` + exerciseColumns + ` FROM exercises
			 WHERE is_active
			 ORDER BY usage_count DESC, name ASC LIMIT $1`,
			[]any{limit},
		},
	}

	for _, q := range queries {
		rows, err := db.Pool.Query(ctx, q.sql, q.args...)
		if err != nil {
			return nil, fmt.Errorf("searching exercises: %w", err)
		}
		exercises, err := scanExerciseRows(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		if len(exercises) > 0 {
			return db.attachAliases(ctx, exercises)
		}
	}
	return nil, nil
}

// GetExercise retrieves one exercise with aliases. Returns (nil, nil)
// when the id is unknown.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.ExerciseWithAliases, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id)

	ex, err := scanExercise(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying exercise: %w", err)
	}

	withAliases, err := db.attachAliases(ctx, []models.ExerciseRow{ex})
	if err != nil {
		return nil, err
	}
	return &withAliases[0], nil
}

// ListOptions filter the browse/search listing.
type ListOptions struct {
	Category   string
	Difficulty string
	Query      string // substring of name, description or any alias
	Limit      int
}

// ListExercises returns active exercises for browse/search screens.
func (db *DB) ListExercises(ctx context.Context, opts ListOptions) ([]models.ExerciseWithAliases, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	conds = append(conds, "e.is_active")
	if opts.Category != "" {
		add("e.category = $%d", opts.Category)
	}
	if opts.Difficulty != "" {
		add("e.difficulty = $%d", opts.Difficulty)
	}
	if opts.Query != "" {
		args = append(args, opts.Query)
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, `(e.name ILIKE '%' || `+p+` || '%'
			OR e.name_ru ILIKE '%' || `+p+` || '%'
			OR e.description ILIKE '%' || `+p+` || '%'
			OR EXISTS (
				SELECT 1 FROM exercise_aliases a
				WHERE a.exercise_id = e.id AND a.alias ILIKE '%' || `+p+` || '%'
			))`)
	}
	args = append(args, opts.Limit)

	query := `SELECT ` + exerciseColumns + ` FROM exercises e
		 WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(` ORDER BY e.usage_count DESC, e.name ASC LIMIT $%d`, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	defer rows.Close()

	exercises, err := scanExerciseRows(rows)
	if err != nil {
		return nil, err
	}
	return db.attachAliases(ctx, exercises)
}

// Categories returns active-exercise counts per category.
func (db *DB) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT category, COUNT(*) FROM exercises WHERE is_active
		 GROUP BY category ORDER BY COUNT(*) DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var result []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Display = models.CategoryDisplay[c.Category]
		result = append(result, c)
	}
	return result, rows.Err()
}

// IncrementUsage atomically bumps an exercise's usage counter.
func (db *DB) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incrementing usage count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incrementing usage count: exercise %s not found", id)
	}
	return nil
}

// UpsertExercise inserts a catalog exercise or refreshes an existing one,
// keyed by the canonical name (case-insensitive). Usage counters and the
// id survive re-imports. Returns true when the exercise was created.
func (db *DB) UpsertExercise(ctx context.Context, ex *models.ExerciseRow) (bool, error) {
	err := db.Pool.QueryRow(ctx,
		`UPDATE exercises SET
			name_ru = $2, description = $3, instructions = $4,
			category = $5, difficulty = $6,
			duration_min = $7, duration_max = $8, repetitions = $9,
			audio_url = $10, video_url = $11,
			image_url_main = $12, image_url_secondary = $13,
			is_active = $14, updated_at = NOW()
		 WHERE lower(name) = lower($1)
		 RETURNING id`,
		ex.Name, ex.NameRU, ex.Description, ex.Instructions,
		ex.Category, ex.Difficulty,
		ex.DurationMin, ex.DurationMax, ex.Repetitions,
		ex.AudioURL, ex.VideoURL,
		ex.ImageURLMain, ex.ImageURLSecondary,
		ex.IsActive).Scan(&ex.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("updating exercise %q: %w", ex.Name, err)
	}

	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO exercises
			(id, name, name_ru, description, instructions, category, difficulty,
			 duration_min, duration_max, repetitions, audio_url, video_url,
			 image_url_main, image_url_secondary, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		ex.ID, ex.Name, ex.NameRU, ex.Description, ex.Instructions,
		ex.Category, ex.Difficulty,
		ex.DurationMin, ex.DurationMax, ex.Repetitions,
		ex.AudioURL, ex.VideoURL,
		ex.ImageURLMain, ex.ImageURLSecondary, ex.IsActive)
	if err != nil {
		return false, fmt.Errorf("inserting exercise %q: %w", ex.Name, err)
	}
	return true, nil
}

// attachAliases loads aliases for the given exercises in one query.
func (db *DB) attachAliases(ctx context.Context, exercises []models.ExerciseRow) ([]models.ExerciseWithAliases, error) {
	result := make([]models.ExerciseWithAliases, len(exercises))
	if len(exercises) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(exercises))
	index := make(map[uuid.UUID]int, len(exercises))
	for i, ex := range exercises {
		result[i] = models.ExerciseWithAliases{ExerciseRow: ex}
		ids[i] = ex.ID
		index[ex.ID] = i
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_id, alias, match_count, created_at
		 FROM exercise_aliases
		 WHERE exercise_id = ANY($1)
		 ORDER BY match_count DESC, alias ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.AliasRow
		if err := rows.Scan(&a.ID, &a.ExerciseID, &a.Alias, &a.MatchCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		if i, ok := index[a.ExerciseID]; ok {
			result[i].Aliases = append(result[i].Aliases, a)
		}
	}
	return result, rows.Err()
}

func scanExerciseRows(rows pgx.Rows) ([]models.ExerciseRow, error) {
	var result []models.ExerciseRow
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

func scanExercise(row pgx.Row) (models.ExerciseRow, error) {
	var ex models.ExerciseRow
	err := row.Scan(&ex.ID, &ex.Name, &ex.NameRU, &ex.Description, &ex.Instructions,
		&ex.Category, &ex.Difficulty, &ex.DurationMin, &ex.DurationMax, &ex.Repetitions,
		&ex.AudioURL, &ex.VideoURL, &ex.ImageURLMain, &ex.ImageURLSecondary,
		&ex.IsActive, &ex.UsageCount, &ex.CreatedAt, &ex.UpdatedAt)
	return ex, err
}
