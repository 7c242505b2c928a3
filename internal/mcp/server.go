package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userLoginKey contextKey = iota

// UserLoginFromContext extracts the user login injected by the transport
// layer, defaulting to the local dev identity.
func UserLoginFromContext(ctx context.Context) string {
	if login, ok := ctx.Value(userLoginKey).(string); ok && login != "" {
		return login
	}
	return "local"
}

// WithUserLogin returns a context with the given user login.
func WithUserLogin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, userLoginKey, login)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepVoice", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepVoice exercise recognition server. Match free-form (often voice-transcribed) exercise names against the catalog, parse workout commands into sets, and browse the exercise catalog and recognition history."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolMatchExercise, Handler: h.matchExercise},
		server.ServerTool{Tool: toolQuickMatchExercise, Handler: h.quickMatchExercise},
		server.ServerTool{Tool: toolParseWorkoutCommand, Handler: h.parseWorkoutCommand},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCategories, Handler: h.categories},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCategories = mcp.NewResource(
	"repvoice://categories",
	"Exercise Categories",
	mcp.WithResourceDescription("All exercise categories with active-exercise counts"),
	mcp.WithMIMEType("application/json"),
)
