// Command api is the March Madness data API server.
//
// Usage:
//
//	madness-api
//	DATABASE_URL=sqlite://madness.db API_PORT=8080 madness-api

// @title March Madness Data API
// @version 1.0.0
// @description Tournament team statistics, historical matchups with precomputed differentials, and bracket rounds enriched with matchup differentials.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name BracketIQ
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bracketiq/madness-data/internal/api"
	"github.com/bracketiq/madness-data/internal/bracket"
	"github.com/bracketiq/madness-data/internal/config"
	"github.com/bracketiq/madness-data/internal/store"

	_ "github.com/bracketiq/madness-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load configuration (reads .env if present)
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg)
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to the store
	logger.Info("Connecting to database...")
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Bracket reference data
	schedule, err := bracket.LoadFile(cfg.BracketFile)
	if err != nil {
		logger.Error("Failed to load bracket schedule", "file", cfg.BracketFile, "error", err)
		os.Exit(1)
	}
	logger.Info("Bracket schedule loaded", "stats_year", schedule.StatsYear, "rounds", len(schedule.Rounds))

	// Create router
	router := api.NewRouter(st, schedule, cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting March Madness Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// newLogger uses JSON output in production and text elsewhere.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
