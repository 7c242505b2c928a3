package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ExercisesCreated int
	ExercisesUpdated int
	AliasesSeeded    int

	RejectedExercises []string
}

// catalogExercise is one entry of a catalog JSON file.
type catalogExercise struct {
	Name              string   `json:"name"`
	NameRU            string   `json:"name_ru"`
	Description       string   `json:"description"`
	Instructions      string   `json:"instructions"`
	Category          string   `json:"category"`
	Difficulty        string   `json:"difficulty"`
	DurationMin       *int     `json:"duration_min"`
	DurationMax       *int     `json:"duration_max"`
	Repetitions       *int     `json:"repetitions"`
	AudioURL          string   `json:"audio_url"`
	VideoURL          string   `json:"video_url"`
	ImageURLMain      string   `json:"image_url_main"`
	ImageURLSecondary string   `json:"image_url_secondary"`
	IsActive          *bool    `json:"is_active"`
	Aliases           []string `json:"aliases"`
}

// Importer reads catalog JSON files from a directory and upserts
// exercises and their seed aliases into the database.
type Importer struct {
	db     *storage.DB
	state  *StateDB
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. state may be nil to disable skip tracking.
func New(db *storage.DB, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, state: state, log: log, dryRun: dryRun}
}

// Import processes all .json files directly under the given catalog
// directory, in name order. Files already recorded in the state DB with
// an unchanged size and hash are skipped.
func (imp *Importer) Import(ctx context.Context, catalogDir string) (*Stats, error) {
	entries, err := os.ReadDir(catalogDir)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading %s: %w", catalogDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		path := filepath.Join(catalogDir, name)

		skip, size, hash, err := imp.alreadyImported(name, path)
		if err != nil {
			return &imp.stats, err
		}
		if skip {
			imp.stats.FilesSkipped++
			imp.log.Info("skipping unchanged file", "file", name)
			continue
		}

		if err := imp.importFile(ctx, path); err != nil {
			imp.stats.FilesErrored++
			imp.log.Error("file import failed", "file", name, "error", err)
			continue
		}
		imp.stats.FilesProcessed++

		if imp.state != nil && !imp.dryRun {
			if err := imp.state.MarkImported(name, size, hash); err != nil {
				return &imp.stats, fmt.Errorf("recording import state for %s: %w", name, err)
			}
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) alreadyImported(name, path string) (skip bool, size int64, hash string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, "", fmt.Errorf("stat %s: %w", path, err)
	}
	size = info.Size()

	hash, err = HashFile(path)
	if err != nil {
		return false, 0, "", fmt.Errorf("hashing %s: %w", path, err)
	}

	if imp.state == nil {
		return false, size, hash, nil
	}
	skip, err = imp.state.IsImported(name, size, hash)
	if err != nil {
		return false, 0, "", fmt.Errorf("checking import state for %s: %w", name, err)
	}
	return skip, size, hash, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var catalog []catalogExercise
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, entry := range catalog {
		if err := imp.importExercise(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (imp *Importer) importExercise(ctx context.Context, entry catalogExercise) error {
	if strings.TrimSpace(entry.Name) == "" {
		imp.stats.RejectedExercises = append(imp.stats.RejectedExercises, entry.NameRU)
		imp.log.Warn("rejecting exercise without canonical name", "name_ru", entry.NameRU)
		return nil
	}

	category := entry.Category
	if !models.ValidCategory(category) {
		if category != "" {
			imp.log.Warn("unknown category, using fallback", "name", entry.Name, "category", category)
		}
		category = models.CategoryOther
	}
	difficulty := entry.Difficulty
	if !models.ValidDifficulty(difficulty) {
		if difficulty != "" {
			imp.log.Warn("unknown difficulty, using fallback", "name", entry.Name, "difficulty", difficulty)
		}
		difficulty = models.DifficultyBeginner
	}

	active := true
	if entry.IsActive != nil {
		active = *entry.IsActive
	}

	ex := models.ExerciseRow{
		Name:              strings.TrimSpace(entry.Name),
		NameRU:            strings.TrimSpace(entry.NameRU),
		Description:       entry.Description,
		Instructions:      entry.Instructions,
		Category:          category,
		Difficulty:        difficulty,
		DurationMin:       entry.DurationMin,
		DurationMax:       entry.DurationMax,
		Repetitions:       entry.Repetitions,
		AudioURL:          entry.AudioURL,
		VideoURL:          entry.VideoURL,
		ImageURLMain:      entry.ImageURLMain,
		ImageURLSecondary: entry.ImageURLSecondary,
		IsActive:          active,
	}

	if imp.dryRun {
		imp.stats.ExercisesCreated++
		imp.stats.AliasesSeeded += len(entry.Aliases)
		return nil
	}

	created, err := imp.db.UpsertExercise(ctx, &ex)
	if err != nil {
		return err
	}
	if created {
		imp.stats.ExercisesCreated++
	} else {
		imp.stats.ExercisesUpdated++
	}

	for _, alias := range entry.Aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		seeded, err := imp.db.SeedAlias(ctx, ex.ID, alias)
		if err != nil {
			return err
		}
		if seeded {
			imp.stats.AliasesSeeded++
		}
	}
	return nil
}
