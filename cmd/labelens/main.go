package main

import (
	"context"
	"log"
	"log/slog"

	"labelens/internal/agent"
	claudeagent "labelens/internal/agent/claude"
	geminiagent "labelens/internal/agent/gemini"
	"labelens/internal/config"
	"labelens/internal/db"
	"labelens/internal/imagesource"
	"labelens/internal/imagestore/local"
	"labelens/internal/logging"
	"labelens/internal/search/tavily"
	"labelens/internal/service"
	"labelens/internal/session"
	"labelens/internal/store"
	"labelens/internal/web"
	"labelens/internal/web/templates"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	// Missing secrets are fatal before the server ever listens.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	resolver, err := imagesource.New(cfg.ExamplesDir)
	if err != nil {
		logger.Error("failed to load example images", "error", err)
		return
	}
	logger.Info("example catalog loaded", "dir", cfg.ExamplesDir, "count", len(resolver.Examples()))

	imgStg, err := local.NewLocalImageStore(cfg.ImagePath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return
	}

	ctx := context.Background()
	searcher := tavily.NewClient(cfg.TavilyAPIKey, tavily.WithMaxResults(cfg.TavilyMaxResults))

	analyzer, model, err := newAnalyzer(ctx, cfg, searcher, logger)
	if err != nil {
		logger.Error("failed to initialize agent", "error", err)
		return
	}

	analysisService := service.NewAnalysisService(store.NewAnalysisStore(database), analyzer, imgStg, model, logger)

	sessions := session.NewManager(session.DefaultMaxIdle)
	sessions.StartSweeper(ctx, session.DefaultMaxIdle/2)

	server := web.NewServer(analysisService, resolver, sessions, templates.FS, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newAnalyzer(ctx context.Context, cfg *config.Config, searcher *tavily.Client, logger *slog.Logger) (agent.Analyzer, string, error) {
	switch cfg.AgentBackend {
	case "claude":
		logger.Info("using Claude agent backend", "model", cfg.ClaudeModel)
		return claudeagent.New(cfg.AnthropicAPIKey, cfg.ClaudeModel, searcher), cfg.ClaudeModel, nil
	default:
		logger.Info("using Gemini agent backend", "model", cfg.GeminiModel)
		a, err := geminiagent.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, searcher)
		return a, cfg.GeminiModel, err
	}
}
