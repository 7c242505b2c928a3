// Package recognize wires the matching engine, the workout command
// parser and the catalog store into the operations the transport layers
// (HTTP, MCP) expose: match, quick-match, confirm and parse.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/repvoice/internal/match"
	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/parse"
	"github.com/google/uuid"
)

// Validation failures, reported before any matching or write work begins.
// Distinct from no-match conditions, which are empty results, not errors.
var (
	ErrEmptyText         = errors.New("text is required")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrInvalidSimilarity = errors.New("similarity_score must be between 0 and 1")
	ErrExerciseNotFound  = errors.New("exercise not found or inactive")
)

// Store is the catalog port. Reads feed the matching engine; writes are
// limited to the two confirmation-loop mutations plus the usage log.
// GetExercise returns (nil, nil) when the id is unknown.
type Store interface {
	match.CatalogReader
	GetExercise(ctx context.Context, id uuid.UUID) (*models.ExerciseWithAliases, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	UpsertAlias(ctx context.Context, id uuid.UUID, alias string) (created bool, err error)
	InsertUsageLog(ctx context.Context, row *models.UsageLogRow) (uuid.UUID, error)
}

// Config holds the service-level thresholds.
type Config struct {
	// AliasPromotionThreshold is the minimum confirmed similarity for the
	// recognized text to be stored as a new alias.
	AliasPromotionThreshold float64
}

// DefaultConfig returns the reference service thresholds.
func DefaultConfig() Config {
	return Config{AliasPromotionThreshold: 0.7}
}

// Service orchestrates recognition operations over one catalog store.
type Service struct {
	full  *match.Engine
	quick *match.Engine
	store Store
	cfg   Config
	log   *slog.Logger
}

// New creates a Service with one engine per matcher variant.
func New(store Store, fullCfg, quickCfg match.Config, cfg Config, log *slog.Logger) *Service {
	return &Service{
		full:  match.NewEngine(fullCfg, store),
		quick: match.NewEngine(quickCfg, store),
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

// MatchRequest is a full-matcher query.
type MatchRequest struct {
	Text       string   `json:"text" validate:"required"`
	Category   string   `json:"category,omitempty"`
	Confidence *float64 `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// MatchResponse carries ranked candidates plus the auto-match decision.
type MatchResponse struct {
	Candidates []models.MatchCandidate `json:"candidates"`
	AutoMatch  bool                    `json:"auto_match"`
	BestMatch  *models.MatchCandidate  `json:"best_match,omitempty"`
}

// Match runs the full matcher. An empty candidate list is a valid
// no-match outcome, not an error.
func (s *Service) Match(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		return nil, ErrInvalidConfidence
	}

	candidates, err := s.full.FindMatches(ctx, req.Text, req.Category)
	if err != nil {
		return nil, err
	}

	if candidates == nil {
		candidates = []models.MatchCandidate{}
	}

	resp := &MatchResponse{Candidates: candidates}
	if len(candidates) > 0 && candidates[0].Similarity >= s.full.Config().AutoMatchThreshold {
		resp.AutoMatch = true
		resp.BestMatch = &candidates[0]
	}

	s.log.Info("match", "text", req.Text, "candidates", len(candidates), "auto", resp.AutoMatch)
	return resp, nil
}

// QuickMatchRequest is a quick-matcher query for small UI surfaces.
type QuickMatchRequest struct {
	Text       string `json:"text" validate:"required"`
	Language   string `json:"language,omitempty" validate:"omitempty,oneof=ru en"`
	MaxResults int    `json:"max_results,omitempty" validate:"omitempty,gte=1,lte=5"`
}

// QuickMatchResponse carries up to MaxResults candidates and flags an
// exact top match.
type QuickMatchResponse struct {
	Candidates []models.MatchCandidate `json:"candidates"`
	ExactMatch bool                    `json:"exact_match"`
}

// QuickMatch runs the quick matcher. Language defaults to Russian, the
// primary input language; MaxResults defaults to 3 cards.
func (s *Service) QuickMatch(ctx context.Context, req QuickMatchRequest) (*QuickMatchResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	language := req.Language
	if language == "" {
		language = "ru"
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	candidates, exact, err := s.quick.QuickMatches(ctx, req.Text, language, maxResults)
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []models.MatchCandidate{}
	}

	s.log.Info("quick match", "text", req.Text, "language", language, "candidates", len(candidates), "exact", exact)
	return &QuickMatchResponse{Candidates: candidates, ExactMatch: exact}, nil
}

// ConfirmRequest records which exercise the user actually meant.
type ConfirmRequest struct {
	ExerciseID      uuid.UUID `json:"exercise_id" validate:"required"`
	RecognizedText  string    `json:"recognized_text,omitempty"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	SimilarityScore *float64  `json:"similarity_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	RepetitionsDone *int      `json:"repetitions_done,omitempty"`
	Completed       bool      `json:"completed,omitempty"`
	UserLogin       string    `json:"-"`
}

// ConfirmResponse reports the written log entry and whether the
// recognized text was promoted to a brand-new alias.
type ConfirmResponse struct {
	LogID        uuid.UUID `json:"log_id"`
	AliasCreated bool      `json:"alias_created"`
}

// Confirm validates the referenced exercise before any write, then logs
// the confirmation, bumps the exercise usage counter and, when the
// similarity clears the promotion threshold, upserts the normalized
// recognized text as an alias. Re-confirming the same text converges on
// one alias row whose match_count keeps growing.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	if req.SimilarityScore != nil && (*req.SimilarityScore < 0 || *req.SimilarityScore > 1) {
		return nil, ErrInvalidSimilarity
	}
	if req.ConfidenceScore != nil && (*req.ConfidenceScore < 0 || *req.ConfidenceScore > 1) {
		return nil, ErrInvalidConfidence
	}

	ex, err := s.store.GetExercise(ctx, req.ExerciseID)
	if err != nil {
		return nil, fmt.Errorf("loading exercise: %w", err)
	}
	if ex == nil || !ex.IsActive {
		return nil, ErrExerciseNotFound
	}

	logID, err := s.store.InsertUsageLog(ctx, &models.UsageLogRow{
		ExerciseID:      req.ExerciseID,
		UserLogin:       req.UserLogin,
		RecognizedText:  req.RecognizedText,
		ConfidenceScore: req.ConfidenceScore,
		SimilarityScore: req.SimilarityScore,
		DurationSeconds: req.DurationSeconds,
		RepetitionsDone: req.RepetitionsDone,
		Completed:       req.Completed,
	})
	if err != nil {
		return nil, fmt.Errorf("writing usage log: %w", err)
	}

	if err := s.store.IncrementUsage(ctx, req.ExerciseID); err != nil {
		return nil, fmt.Errorf("incrementing usage count: %w", err)
	}

	resp := &ConfirmResponse{LogID: logID}
	if alias, ok := s.promotableAlias(ex, req); ok {
		created, err := s.store.UpsertAlias(ctx, req.ExerciseID, alias)
		if err != nil {
			// Alias feedback is soft analytics; a failed upsert must not
			// fail an otherwise-recorded confirmation.
			s.log.Warn("alias upsert failed", "exercise_id", req.ExerciseID, "alias", alias, "error", err)
		} else {
			resp.AliasCreated = created
		}
	}

	s.log.Info("confirm", "exercise_id", req.ExerciseID, "log_id", logID, "alias_created", resp.AliasCreated)
	return resp, nil
}

// promotableAlias decides whether the confirmed text should be stored as
// an alias: the similarity must clear the threshold and the normalized
// text must not duplicate either stored name.
func (s *Service) promotableAlias(ex *models.ExerciseWithAliases, req ConfirmRequest) (string, bool) {
	if req.SimilarityScore == nil || *req.SimilarityScore < s.cfg.AliasPromotionThreshold {
		return "", false
	}
	alias := match.Normalize(req.RecognizedText)
	if alias == "" || alias == match.Normalize(ex.Name) || alias == match.Normalize(ex.NameRU) {
		return "", false
	}
	return alias, true
}

// ParseResult bundles a parsed command with its display summary.
type ParseResult struct {
	models.ParsedCommand
	Summary string `json:"summary,omitempty"`
}

// ParseCommand parses one spoken workout command. Pattern non-match is
// not an error; it yields the unstructured fallback.
func (s *Service) ParseCommand(ctx context.Context, text string) (*ParseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	cmd := parse.Parse(text)
	s.log.Info("parse command", "text", text, "structured", cmd.IsStructured, "sets", len(cmd.Sets))
	return &ParseResult{ParsedCommand: cmd, Summary: parse.FormatSummary(cmd.Sets)}, nil
}
