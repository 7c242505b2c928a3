package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UpsertAlias records a confirmed spoken form for an exercise. A new
// alias starts with match_count 1; repeats increment the counter.
// Returns true when the alias was created by this call.
func (db *DB) UpsertAlias(ctx context.Context, exerciseID uuid.UUID, alias string) (bool, error) {
	// xmax = 0 distinguishes a fresh insert from the conflict update;
	// match_count alone cannot, since a seeded alias starts at 0 and an
	// update would land on 1 too.
	var created bool
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercise_aliases (exercise_id, alias, match_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (exercise_id, lower(alias))
		 DO UPDATE SET match_count = exercise_aliases.match_count + 1
		 RETURNING (xmax = 0)`,
		exerciseID, alias).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upserting alias: %w", err)
	}
	return created, nil
}

// SeedAlias inserts a catalog-provided alias without touching the match
// counter of an existing one. Returns true when the alias was created.
func (db *DB) SeedAlias(ctx context.Context, exerciseID uuid.UUID, alias string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_aliases (exercise_id, alias, match_count)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (exercise_id, lower(alias)) DO NOTHING`,
		exerciseID, alias)
	if err != nil {
		return false, fmt.Errorf("seeding alias: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
