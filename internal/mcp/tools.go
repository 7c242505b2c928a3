package mcp

import (
	"context"

	"github.com/claude/repvoice/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolMatchExercise = mcp.NewTool("match_exercise",
	mcp.WithDescription("Match a free-form (often voice-transcribed) exercise name against the full catalog. Returns ranked candidates with similarity scores, extracted quantities (reps, duration, sets, weight), and an auto-match decision when the top candidate is unambiguous."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Recognized text to match (e.g. 'приседания 10 раз')")),
	mcp.WithString("category", mcp.Description("Restrict matching to one category (e.g. physical, breathing, meditation)")),
)

var toolQuickMatchExercise = mcp.NewTool("quick_match_exercise",
	mcp.WithDescription("Fast top-N exercise match for small UI surfaces. Returns compact candidate cards with short descriptions and an exact-match flag."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Recognized text to match")),
	mcp.WithString("language", mcp.Description("Input language. Defaults to 'ru'."), mcp.Enum("ru", "en")),
	mcp.WithNumber("max_results", mcp.Description("Maximum candidates to return (1-5). Defaults to 3.")),
)

var toolParseWorkoutCommand = mcp.NewTool("parse_workout_command",
	mcp.WithDescription("Parse a spoken workout command into an exercise name and structured sets with reps and weights. Handles per-group commands like 'жим 3 подхода: 2 из них 4 раза по 40кг и один 4 раза по 50кг' as well as uniform ones."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Workout command to parse")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List active catalog exercises with their aliases. All filters are optional."),
	mcp.WithString("category", mcp.Description("Filter by category")),
	mcp.WithString("difficulty", mcp.Description("Filter by difficulty"), mcp.Enum("beginner", "intermediate", "advanced")),
	mcp.WithString("query", mcp.Description("Substring of the name, description, or any alias")),
	mcp.WithNumber("limit", mcp.Description("Maximum exercises to return. Defaults to 20.")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Recognition history for the current user: confirmed exercises with recognized text, scores, and performed reps/duration, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Defaults to 50.")),
)

// --- Tool handlers ---

func (h *handlers) matchExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	resp, err := h.ds.MatchExercise(ctx, text, req.GetString("category", ""))
	if err != nil {
		h.log.Error("mcp match_exercise", "error", err)
		return mcp.NewToolResultError("match failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(resp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) quickMatchExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	resp, err := h.ds.QuickMatchExercise(ctx, text, req.GetString("language", ""), req.GetInt("max_results", 0))
	if err != nil {
		h.log.Error("mcp quick_match_exercise", "error", err)
		return mcp.NewToolResultError("match failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(resp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) parseWorkoutCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	parsed, err := h.ds.ParseWorkoutCommand(ctx, text)
	if err != nil {
		h.log.Error("mcp parse_workout_command", "error", err)
		return mcp.NewToolResultError("parse failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(parsed)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := storage.ListOptions{
		Category:   req.GetString("category", ""),
		Difficulty: req.GetString("difficulty", ""),
		Query:      req.GetString("query", ""),
		Limit:      req.GetInt("limit", 0),
	}

	exercises, err := h.ds.ListExercises(ctx, opts)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	login := UserLoginFromContext(ctx)

	entries, err := h.ds.ExerciseHistory(ctx, login, req.GetInt("limit", 0))
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
