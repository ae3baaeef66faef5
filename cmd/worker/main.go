package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/cretahub/internal/audit"
	"github.com/nikhilbhutani/cretahub/internal/config"
	"github.com/nikhilbhutani/cretahub/internal/database"
	"github.com/nikhilbhutani/cretahub/internal/queue"
	"github.com/nikhilbhutani/cretahub/internal/queue/workers"
)

const concurrency = 4

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("worker needs DATABASE_URL to record turns")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, database.MigrationSource(cfg.Database.MigrationsPath)); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(queue.RedisOpt(cfg.Redis), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{"default": 1},
	})

	registry := queue.NewHandlersRegistry()
	recorder := workers.NewTurnRecorder(audit.NewService(db))
	registry.Register(queue.TypeTurnRecord, asynq.HandlerFunc(recorder.ProcessTask))

	slog.Info("starting worker", "concurrency", concurrency, "types", registry.Types())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
