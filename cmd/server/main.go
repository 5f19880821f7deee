package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/config"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/journal"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/logging"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/report"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/rms"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", cfg.Backend.BaseURL,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"journal_enabled", cfg.Journal.Enabled(),
	)

	ctx := context.Background()

	// Optional submission journal
	var jrnl *journal.Service
	if cfg.Journal.Enabled() {
		poolConfig, err := pgxpool.ParseConfig(cfg.Journal.DatabaseURL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Journal.MaxConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		jrnl = journal.New(pool)
		if err := jrnl.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure journal schema", "error", err)
			os.Exit(1)
		}
		slog.Info("submission journal enabled")
	}

	// Backend client and submission orchestrator
	client := rms.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, nil)
	limiter := report.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	orch := report.NewOrchestrator(client, limiter)

	slog.Info("components registered", "count", report.ComponentCount())

	server := web.NewServer(cfg, orch, jrnl)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight image uploads to complete (with timeout)
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for uploads to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
