package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/repvoice/internal/models"
	"github.com/claude/repvoice/internal/recognize"
	"github.com/claude/repvoice/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req recognize.MatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := s.svc.Match(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuickMatch(w http.ResponseWriter, r *http.Request) {
	var req recognize.QuickMatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := s.svc.QuickMatch(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req recognize.ConfirmRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	req.UserLogin = userInfoFromContext(r).Login

	resp, err := s.svc.Confirm(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleParseCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.svc.ParseCommand(r.Context(), req.Text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := storage.ListOptions{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Query:      q.Get("q"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		opts.Limit = limit
	}

	exercises, err := s.catalog.ListExercises(r.Context(), opts)
	if err != nil {
		s.log.Error("list exercises", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if exercises == nil {
		exercises = []models.ExerciseWithAliases{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercises": exercises, "count": len(exercises)})
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	ex, err := s.catalog.GetExercise(r.Context(), id)
	if err != nil {
		s.log.Error("get exercise", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if ex == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.log.Error("list categories", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if categories == nil {
		categories = []models.CategoryCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	login := userInfoFromContext(r).Login
	entries, err := s.catalog.ExerciseHistory(r.Context(), login, limit)
	if err != nil {
		s.log.Error("exercise history", "user", login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if entries == nil {
		entries = []storage.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries, "count": len(entries)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// decodeAndValidate parses the JSON body into dst and checks its
// validate tags, writing a 400 response on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "validation failed: " + err.Error()})
		return false
	}
	return true
}

// writeServiceError maps service errors to HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recognize.ErrEmptyText),
		errors.Is(err, recognize.ErrInvalidConfidence),
		errors.Is(err, recognize.ErrInvalidSimilarity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, recognize.ErrExerciseNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.log.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
