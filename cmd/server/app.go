package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfoster/taskrelay/internal/config"
	"github.com/nfoster/taskrelay/internal/generation"
	"github.com/nfoster/taskrelay/internal/platform/gemini"
	"github.com/nfoster/taskrelay/internal/platform/logger"
	"github.com/nfoster/taskrelay/internal/task"
	"github.com/nfoster/taskrelay/internal/webhook"
)

// application holds the wired dependencies for the server process.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	registry  *task.Registry
	runner    *task.Runner
	generator generation.Generator
}

// initializeApp loads configuration and constructs application components.
// The registry and runner are explicitly owned here and injected into the
// HTTP layer, never reached through package-level state, so tests can build
// isolated instances.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"retention_seconds", cfg.Task.RetentionSeconds)

	registry := task.NewRegistry(appLogger)

	deliverer := webhook.NewClient(webhook.Config{
		MaxAttempts:    cfg.Webhook.MaxAttempts,
		BaseDelay:      cfg.Webhook.BaseDelay(),
		AttemptTimeout: cfg.Webhook.AttemptTimeout(),
	}, appLogger)

	runner := task.NewRunner(registry, deliverer, task.RunnerConfig{
		Retention: cfg.Task.Retention(),
	}, appLogger)

	generator, err := gemini.NewGenerator(ctx, appLogger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	return &application{
		config:    cfg,
		logger:    appLogger,
		registry:  registry,
		runner:    runner,
		generator: generator,
	}, nil
}

// cleanup stops background work; in-flight tasks run to completion and
// pending reapers are abandoned.
func (app *application) cleanup() {
	app.logger.Info("stopping task runner")
	app.runner.Stop()
}
