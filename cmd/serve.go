package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/api"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/app"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/config"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
)

var serveClearIndex bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Ingest the documents folder and serve the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveClearIndex, "clear", false,
		"rebuild the index from scratch instead of skipping already indexed courses")
	rootCmd.AddCommand(serveCmd)
}

// runServe loads configuration, ingests the course documents folder
// and serves the API until interrupted.
func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	courses, chunks, err := a.System.AddCourseFolder(ctx, cfg.DocsDir, serveClearIndex)
	if err != nil {
		return fmt.Errorf("ingesting course documents: %w", err)
	}
	logger.Info("course ingestion complete",
		"docs_dir", cfg.DocsDir, "courses_added", courses, "chunks_added", chunks)

	server := api.NewServer(a.System, logger)
	return server.Run(ctx, cfg.Addr)
}
