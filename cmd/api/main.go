package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/cretahub/internal/api"
	"github.com/nikhilbhutani/cretahub/internal/assistant"
	"github.com/nikhilbhutani/cretahub/internal/audit"
	"github.com/nikhilbhutani/cretahub/internal/cache"
	"github.com/nikhilbhutani/cretahub/internal/config"
	"github.com/nikhilbhutani/cretahub/internal/database"
	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/stt"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/tts"
	"github.com/nikhilbhutani/cretahub/internal/queue"
	"github.com/nikhilbhutani/cretahub/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Postgres is optional; without it the seed table is served from memory.
	var db *pgxpool.Pool
	var data dataset.Provider
	if cfg.Database.URL != "" {
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, serving seed data", "error", err)
		} else if err := database.RunMigrations(ctx, pool, database.MigrationSource(cfg.Database.MigrationsPath)); err != nil {
			slog.Warn("migrations failed, serving seed data", "error", err)
			pool.Close()
		} else {
			db = pool
			defer db.Close()
			data = dataset.NewPostgresProvider(db)
		}
	}
	if data == nil {
		mem, err := dataset.NewMemoryProvider(dataset.Seed())
		if err != nil {
			slog.Error("seed dataset", "error", err)
			os.Exit(1)
		}
		data = mem
	}

	// Redis backs the snapshot cache, the session store and the turn queue.
	var rdb *redis.Client
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache", "error", err)
		client.Close()
	} else {
		rdb = client
		defer rdb.Close()
		if cfg.Assistant.DatasetCacheTTL > 0 {
			data = dataset.NewCachedProvider(data, cache.NewCache(rdb, "cretahub"), cfg.Assistant.DatasetCacheTTL)
		}
	}

	logs := session.MemoryLogs()
	if cfg.Session.Store == "redis" {
		if rdb == nil {
			slog.Error("session store is redis but redis is unavailable")
			os.Exit(1)
		}
		logs = session.RedisLogs(rdb, cfg.Session.TTL)
	}

	var recorder assistant.Recorder
	var auditSvc *audit.Service
	if db != nil {
		auditSvc = audit.NewService(db)
		if rdb != nil {
			qc := queue.NewClient(cfg.Redis)
			defer qc.Close()
			recorder = assistant.NewQueueRecorder(qc)
		}
	}

	pipeline, err := assistant.NewFromConfig(cfg, data, recorder)
	if err != nil {
		slog.Error("build pipeline", "error", err)
		os.Exit(1)
	}

	transcriber, err := stt.FromConfig(cfg.STT)
	if err != nil {
		slog.Error("build stt", "error", err)
		os.Exit(1)
	}
	synth, err := tts.FromConfig(cfg.TTS)
	if err != nil {
		slog.Error("build tts", "error", err)
		os.Exit(1)
	}

	deps := api.Deps{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Sessions: session.NewManager(logs),
		Pipeline: pipeline,
		Data:     data,
		STT:      transcriber,
		TTS:      synth,
		Audit:    auditSvc,
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"provider", cfg.LLM.DefaultProvider,
			"model", cfg.LLM.DefaultModel,
			"session_store", cfg.Session.Store,
			"postgres", db != nil,
			"redis", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
