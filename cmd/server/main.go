// Package main implements the entry point for the tarot reading API
// server, which accepts tarot draws from the mini-program client and
// interprets them asynchronously through an LLM backend.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/arcanalab/tarot-api/internal/config"
	"github.com/arcanalab/tarot-api/internal/platform/logger"
)

func main() {
	// A missing .env is fine; real deployments set the environment
	// directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_model", cfg.LLM.Model,
		"workers", cfg.Task.WorkerCount)

	if err := run(context.Background(), cfg, appLogger); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run wires the application together and blocks until shutdown.
func run(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	app.taskRunner.Start(ctx)

	return app.startHTTPServer(ctx, app.setupRouter())
}
