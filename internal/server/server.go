package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/recognize"
	"github.com/claude/repvoice/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"tailscale.com/client/local"
)

// Catalog is the read access the HTTP layer needs beyond recognition.
// *storage.DB satisfies it.
type Catalog interface {
	GetExercise(ctx context.Context, id uuid.UUID) (*models.ExerciseWithAliases, error)
	ListExercises(ctx context.Context, opts storage.ListOptions) ([]models.ExerciseWithAliases, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
	ExerciseHistory(ctx context.Context, userLogin string, limit int) ([]storage.HistoryEntry, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      *recognize.Service
	catalog  Catalog
	log      *slog.Logger
	apiKey   string
	validate *validator.Validate
	ts       *local.Client
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *recognize.Service, catalog Catalog, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:      svc,
		catalog:  catalog,
		log:      log,
		apiKey:   apiKey,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity resolution from the dev fallback to
// WhoIs lookups against the tsnet node's local API.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identity)

		// Recognition endpoints
		r.Post("/exercises/match", s.handleMatch)
		r.Post("/exercises/quick-match", s.handleQuickMatch)
		r.Post("/exercises/confirm", s.handleConfirm)
		r.Post("/workouts/parse", s.handleParseCommand)

		// Catalog endpoints
		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/categories", s.handleCategories)
		r.Get("/exercises/history", s.handleHistory)
		r.Get("/exercises/{id}", s.handleGetExercise)

		r.Get("/me", s.handleMe)
	})
}
