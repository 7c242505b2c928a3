package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/repvoice/internal/config"
	"github.com/claude/repvoice/internal/match"
	"github.com/claude/repvoice/internal/mcp"
	"github.com/claude/repvoice/internal/recognize"
	"github.com/claude/repvoice/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remoteURL := flag.String("remote", "", "base URL of a remote RepVoice server; omit for direct database access")
	apiKey := flag.String("api-key", "", "API key for remote mode (default: auth.api_key from config)")
	userLogin := flag.String("user", "", "user login for history lookups (default: local)")
	flag.Parse()

	// MCP uses stdout for the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remoteURL != "" {
		key := *apiKey
		if key == "" {
			if cfg, err := config.Load(*configPath); err == nil {
				key = cfg.Auth.APIKey
			}
		}
		if key == "" {
			log.Error("remote mode requires an API key (flag or config)")
			os.Exit(1)
		}
		ds = mcp.NewHTTPClient(*remoteURL, key)
		log.Info("remote mode", "url", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		svc := recognize.New(db, match.FullConfig(), match.QuickConfig(), recognize.DefaultConfig(), log)
		ds = &mcp.LocalSource{Svc: svc, DB: db}
		log.Info("local mode", "database", cfg.Database.Name)
	}

	mcpServer := mcp.New(ds, Version, log)

	stdio := server.NewStdioServer(mcpServer)
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		if *userLogin != "" {
			return mcp.WithUserLogin(ctx, *userLogin)
		}
		return ctx
	})

	log.Info("MCP server listening on stdio")
	if err := stdio.Listen(context.Background(), os.Stdin, os.Stdout); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
