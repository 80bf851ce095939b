package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcanalab/tarot-api/internal/config"
	"github.com/arcanalab/tarot-api/internal/platform/deepseek"
	"github.com/arcanalab/tarot-api/internal/platform/postgres"
	"github.com/arcanalab/tarot-api/internal/service"
	"github.com/arcanalab/tarot-api/internal/task"
)

// taskDrainTimeout bounds how long shutdown waits for in-flight readings to
// reach a terminal state before cancelling them.
const taskDrainTimeout = 30 * time.Second

// application holds the wired dependencies of the running server.
type application struct {
	config         *config.Config
	logger         *slog.Logger
	db             *sql.DB
	taskRunner     *task.TaskRunner
	readingService *service.ReadingService
}

// newApplication connects the database, applies migrations, and builds the
// stores, interpreter, task runner and services.
func newApplication(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	readingStore := postgres.NewPostgresReadingStore(db)
	userStore := postgres.NewPostgresUserStore(db)
	interpreter := deepseek.NewClient(cfg.LLM, appLogger)
	taskRunner := task.NewTaskRunner(cfg.Task, appLogger)

	readingService, err := service.NewReadingService(
		readingStore, userStore, interpreter, taskRunner, appLogger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create reading service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         appLogger,
		db:             db,
		taskRunner:     taskRunner,
		readingService: readingService,
	}, nil
}

// cleanup releases application resources. Called once the HTTP server has
// stopped accepting requests.
func (app *application) cleanup() {
	app.taskRunner.Stop(taskDrainTimeout)

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}

	app.logger.Info("application cleanup completed")
}
