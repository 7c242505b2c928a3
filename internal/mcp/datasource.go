package mcp

import (
	"context"

	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/recognize"
	"github.com/claude/repvoice/internal/storage"
)

// DataSource abstracts the recognition and catalog layer for MCP tools.
// Both LocalSource (in-process) and HTTPClient (remote via REST API)
// satisfy this interface.
type DataSource interface {
	MatchExercise(ctx context.Context, text, category string) (*recognize.MatchResponse, error)
	QuickMatchExercise(ctx context.Context, text, language string, maxResults int) (*recognize.QuickMatchResponse, error)
	ParseWorkoutCommand(ctx context.Context, text string) (*recognize.ParseResult, error)
	ListExercises(ctx context.Context, opts storage.ListOptions) ([]models.ExerciseWithAliases, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
	ExerciseHistory(ctx context.Context, userLogin string, limit int) ([]storage.HistoryEntry, error)
}

// LocalSource serves MCP tools directly from the recognition service and
// the database, for when the MCP server runs inside the main binary.
type LocalSource struct {
	Svc *recognize.Service
	DB  *storage.DB
}

// Compile-time check: LocalSource satisfies DataSource.
var _ DataSource = (*LocalSource)(nil)

func (l *LocalSource) MatchExercise(ctx context.Context, text, category string) (*recognize.MatchResponse, error) {
	return l.Svc.Match(ctx, recognize.MatchRequest{Text: text, Category: category})
}

func (l *LocalSource) QuickMatchExercise(ctx context.Context, text, language string, maxResults int) (*recognize.QuickMatchResponse, error) {
	return l.Svc.QuickMatch(ctx, recognize.QuickMatchRequest{Text: text, Language: language, MaxResults: maxResults})
}

func (l *LocalSource) ParseWorkoutCommand(ctx context.Context, text string) (*recognize.ParseResult, error) {
	return l.Svc.ParseCommand(ctx, text)
}

func (l *LocalSource) ListExercises(ctx context.Context, opts storage.ListOptions) ([]models.ExerciseWithAliases, error) {
	return l.DB.ListExercises(ctx, opts)
}

func (l *LocalSource) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	return l.DB.Categories(ctx)
}

func (l *LocalSource) ExerciseHistory(ctx context.Context, userLogin string, limit int) ([]storage.HistoryEntry, error) {
	return l.DB.ExerciseHistory(ctx, userLogin, limit)
}
