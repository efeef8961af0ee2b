// Package app assembles the application from its components.
package app

import (
	"context"
	"fmt"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/config"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/course"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/generator"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/knowledge"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/rag"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/session"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

// App holds the assembled application.
type App struct {
	Config *config.Config
	Logger log.Logger
	Store  *knowledge.Store
	System *rag.System
}

// Setup builds the full pipeline from configuration: embedder, vector
// index, tools, generator, sessions and the orchestrator.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = log.New(log.Config{})
	}

	embedder, err := knowledge.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedderModel, cfg.EmbedRPS)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := knowledge.New(embedder, cfg.MaxResults, logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector index: %w", err)
	}

	registry := tools.NewRegistry(logger)

	searchTool, err := tools.NewSearchTool(store, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("creating search tool: %w", err)
	}
	if err := registry.Register(searchTool); err != nil {
		return nil, fmt.Errorf("registering search tool: %w", err)
	}

	outlineTool, err := tools.NewOutlineTool(store, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("creating outline tool: %w", err)
	}
	if err := registry.Register(outlineTool); err != nil {
		return nil, fmt.Errorf("registering outline tool: %w", err)
	}

	client, err := generator.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	gen, err := generator.New(client, registry, cfg.MaxToolRounds, logger)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	sessions := session.New(cfg.MaxHistory, logger)
	chunker := course.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)

	system, err := rag.New(chunker, store, registry, gen, sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("creating rag system: %w", err)
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		System: system,
	}, nil
}
