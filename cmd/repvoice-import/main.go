package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repvoice/internal/config"
	"github.com/claude/repvoice/internal/importer"
	"github.com/claude/repvoice/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	catalogPath := flag.String("path", "", "path to exercise catalog directory (required)")
	statePath := flag.String("state", "", "directory for the import state database (default: disabled)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *catalogPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repvoice-import -config config.yaml -path /path/to/catalog [-state dir] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify catalog directory exists
	info, err := os.Stat(*catalogPath)
	if err != nil || !info.IsDir() {
		log.Error("catalog path does not exist or is not a directory", "path", *catalogPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Open import state tracking
	var state *importer.StateDB
	if *statePath != "" {
		state, err = importer.OpenStateDB(*statePath)
		if err != nil {
			log.Error("failed to open state db", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	}

	// Run import
	imp := importer.New(db, state, log, *dryRun)
	stats, err := imp.Import(ctx, *catalogPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"exercises_created", stats.ExercisesCreated,
		"exercises_updated", stats.ExercisesUpdated,
		"aliases_seeded", stats.AliasesSeeded,
	)
	if len(stats.RejectedExercises) > 0 {
		log.Info("rejected exercises (no canonical name)", "exercises", stats.RejectedExercises)
	}
}
