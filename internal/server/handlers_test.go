package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/repvoice/internal/match"
	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/recognize"
	"github.com/claude/repvoice/internal/storage"
	"github.com/google/uuid"
)

const testAPIKey = "test-key"

// stubStore backs both the recognition service and the catalog port with
// one in-memory exercise set.
type stubStore struct {
	exercises map[uuid.UUID]*models.ExerciseWithAliases
	logs      []models.UsageLogRow
	history   []storage.HistoryEntry
}

func newStubStore(exercises ...*models.ExerciseWithAliases) *stubStore {
	s := &stubStore{exercises: map[uuid.UUID]*models.ExerciseWithAliases{}}
	for _, ex := range exercises {
		s.exercises[ex.ID] = ex
	}
	return s
}

func (s *stubStore) all() []models.ExerciseWithAliases {
	var out []models.ExerciseWithAliases
	for _, ex := range s.exercises {
		out = append(out, *ex)
	}
	return out
}

func (s *stubStore) ActiveExercises(_ context.Context, category string) ([]models.ExerciseWithAliases, error) {
	var out []models.ExerciseWithAliases
	for _, ex := range s.exercises {
		if ex.IsActive && (category == "" || ex.Category == category) {
			out = append(out, *ex)
		}
	}
	return out, nil
}

func (s *stubStore) SearchActive(ctx context.Context, _, _ string, _ int) ([]models.ExerciseWithAliases, error) {
	return s.ActiveExercises(ctx, "")
}

func (s *stubStore) GetExercise(_ context.Context, id uuid.UUID) (*models.ExerciseWithAliases, error) {
	return s.exercises[id], nil
}

func (s *stubStore) IncrementUsage(_ context.Context, _ uuid.UUID) error { return nil }

func (s *stubStore) UpsertAlias(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return true, nil
}

func (s *stubStore) InsertUsageLog(_ context.Context, row *models.UsageLogRow) (uuid.UUID, error) {
	row.ID = uuid.New()
	row.CreatedAt = time.Now()
	s.logs = append(s.logs, *row)
	return row.ID, nil
}

func (s *stubStore) ListExercises(_ context.Context, opts storage.ListOptions) ([]models.ExerciseWithAliases, error) {
	var out []models.ExerciseWithAliases
	for _, ex := range s.all() {
		if opts.Category != "" && ex.Category != opts.Category {
			continue
		}
		out = append(out, ex)
	}
	return out, nil
}

func (s *stubStore) Categories(_ context.Context) ([]models.CategoryCount, error) {
	counts := map[string]int{}
	for _, ex := range s.all() {
		counts[ex.Category]++
	}
	var out []models.CategoryCount
	for c, n := range counts {
		out = append(out, models.CategoryCount{Category: c, Display: models.CategoryDisplay[c], Count: n})
	}
	return out, nil
}

func (s *stubStore) ExerciseHistory(_ context.Context, userLogin string, _ int) ([]storage.HistoryEntry, error) {
	var out []storage.HistoryEntry
	for _, e := range s.history {
		if e.UserLogin == userLogin {
			out = append(out, e)
		}
	}
	return out, nil
}

func squatsExercise() *models.ExerciseWithAliases {
	return &models.ExerciseWithAliases{
		ExerciseRow: models.ExerciseRow{
			ID:         uuid.New(),
			Name:       "Squats",
			NameRU:     "Приседания",
			Category:   models.CategoryPhysical,
			Difficulty: models.DifficultyBeginner,
			IsActive:   true,
		},
		Aliases: []models.AliasRow{{Alias: "приседания"}},
	}
}

func newTestServer(store *stubStore) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := recognize.New(store, match.FullConfig(), match.QuickConfig(), recognize.DefaultConfig(), log)
	return New(svc, store, testAPIKey, log)
}

// doJSON runs one authenticated request against the full router.
func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// TestRoutesRequireAPIKey verifies that the API subtree rejects
// unauthenticated requests.
func TestRoutesRequireAPIKey(t *testing.T) {
	srv := newTestServer(newStubStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestHandleMatch verifies the match endpoint end to end, including the
// auto-match decision on an exact hit.
func TestHandleMatch(t *testing.T) {
	ex := squatsExercise()
	srv := newTestServer(newStubStore(ex))

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/exercises/match", map[string]string{"text": "приседания"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp recognize.MatchResponse
	decodeBody(t, rec, &resp)
	if !resp.AutoMatch {
		t.Error("auto_match = false, want true")
	}
	if resp.BestMatch == nil || resp.BestMatch.ExerciseID != ex.ID {
		t.Errorf("best_match = %+v, want exercise %s", resp.BestMatch, ex.ID)
	}
}

// TestHandleMatchMissingText verifies the validation error path.
func TestHandleMatchMissingText(t *testing.T) {
	srv := newTestServer(newStubStore())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/exercises/match", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleMatchInvalidJSON verifies the decode error path.
func TestHandleMatchInvalidJSON(t *testing.T) {
	srv := newTestServer(newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exercises/match", bytes.NewBufferString("{not json"))
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleQuickMatch verifies the quick-match endpoint and its exact flag.
func TestHandleQuickMatch(t *testing.T) {
	srv := newTestServer(newStubStore(squatsExercise()))

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/exercises/quick-match", map[string]any{
		"text":        "приседания",
		"language":    "ru",
		"max_results": 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp recognize.QuickMatchResponse
	decodeBody(t, rec, &resp)
	if !resp.ExactMatch {
		t.Error("exact_match = false, want true")
	}
}

// TestHandleConfirm verifies that confirmation attributes the usage log
// to the caller's identity, not to anything in the request body.
func TestHandleConfirm(t *testing.T) {
	ex := squatsExercise()
	store := newStubStore(ex)
	srv := newTestServer(store)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/exercises/confirm", map[string]any{
		"exercise_id":      ex.ID,
		"recognized_text":  "глубокие приседания",
		"similarity_score": 0.9,
		"completed":        true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if len(store.logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(store.logs))
	}
	if store.logs[0].UserLogin != "local" {
		t.Errorf("user_login = %q, want %q", store.logs[0].UserLogin, "local")
	}
}

// TestHandleConfirmUnknownExercise verifies the 404 mapping.
func TestHandleConfirmUnknownExercise(t *testing.T) {
	srv := newTestServer(newStubStore())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/exercises/confirm", map[string]any{
		"exercise_id": uuid.New(),
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestHandleParseCommand verifies the workout parse endpoint.
func TestHandleParseCommand(t *testing.T) {
	srv := newTestServer(newStubStore())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workouts/parse", map[string]string{
		"text": "жим лежа 3 подхода по 10 раз",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp recognize.ParseResult
	decodeBody(t, rec, &resp)
	if !resp.IsStructured {
		t.Error("is_structured = false, want true")
	}
	if len(resp.Sets) != 3 {
		t.Errorf("len(sets) = %d, want 3", len(resp.Sets))
	}
}

// TestHandleListExercises verifies the catalog listing envelope.
func TestHandleListExercises(t *testing.T) {
	srv := newTestServer(newStubStore(squatsExercise(), squatsExercise()))

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Exercises []models.ExerciseWithAliases `json:"exercises"`
		Count     int                          `json:"count"`
	}
	decodeBody(t, rec, &resp)
	if resp.Count != 2 || len(resp.Exercises) != 2 {
		t.Errorf("count = %d, len = %d, want 2", resp.Count, len(resp.Exercises))
	}
}

// TestHandleListExercisesInvalidLimit verifies limit validation.
func TestHandleListExercisesInvalidLimit(t *testing.T) {
	srv := newTestServer(newStubStore())

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises?limit=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleGetExercise verifies ID parsing and the not-found mapping.
func TestHandleGetExercise(t *testing.T) {
	ex := squatsExercise()
	srv := newTestServer(newStubStore(ex))

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises/"+ex.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("known id: status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/exercises/"+uuid.New().String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/exercises/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

// TestHandleCategories verifies the category summary endpoint.
func TestHandleCategories(t *testing.T) {
	srv := newTestServer(newStubStore(squatsExercise()))

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Categories []models.CategoryCount `json:"categories"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Categories) != 1 {
		t.Fatalf("len(categories) = %d, want 1", len(resp.Categories))
	}
	if resp.Categories[0].Category != models.CategoryPhysical {
		t.Errorf("category = %q, want %q", resp.Categories[0].Category, models.CategoryPhysical)
	}
}

// TestHandleHistory verifies that history is scoped to the caller.
func TestHandleHistory(t *testing.T) {
	store := newStubStore()
	store.history = []storage.HistoryEntry{
		{UsageLogRow: models.UsageLogRow{ID: uuid.New(), UserLogin: "local"}, ExerciseName: "Squats"},
		{UsageLogRow: models.UsageLogRow{ID: uuid.New(), UserLogin: "someone-else"}, ExerciseName: "Push-ups"},
	}
	srv := newTestServer(store)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		History []storage.HistoryEntry `json:"history"`
		Count   int                    `json:"count"`
	}
	decodeBody(t, rec, &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.History[0].ExerciseName != "Squats" {
		t.Errorf("exercise = %q, want %q", resp.History[0].ExerciseName, "Squats")
	}
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	srv := newTestServer(newStubStore())

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	decodeBody(t, rec, &info)
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// identity stored in context by the Tailscale middleware.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}
