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

	"github.com/timeboxai/timebox/internal/api"
	"github.com/timeboxai/timebox/internal/bus"
	"github.com/timeboxai/timebox/internal/config"
	"github.com/timeboxai/timebox/internal/engine"
	"github.com/timeboxai/timebox/internal/models"
	"github.com/timeboxai/timebox/internal/store"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessions := store.NewSessionStore(db)

	// Repair history: a session still marked running belongs to a previous
	// process. The active slot is volatile on purpose; nothing is resumed.
	if count, err := sessions.CleanupStaleRunning(time.Now()); err != nil {
		logger.Error("stale session cleanup failed", "error", err)
	} else if count > 0 {
		logger.Info("cleaned up stale running sessions", "count", count)
	}

	// Engine + event fan-out
	events := bus.New()
	eng := engine.New(sessions, events, logger, engine.Options{})
	defer eng.Close()

	// Log lifecycle events; one subscriber among many, same delivery rules
	// as any external observer.
	logSub := events.Subscribe(bus.DefaultBuffer)
	defer logSub.Close()
	go func() {
		for event := range logSub.Events() {
			if event.Type == models.EventTick {
				continue
			}
			logger.Info("timer event",
				"type", event.Type,
				"session_id", event.Session.ID,
				"label", event.Session.Label,
				"origin", event.Session.Origin,
			)
		}
	}()

	// Router
	router := api.NewRouter(db, eng, sessions, events, cfg.APIKey, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("timebox daemon starting", "addr", addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("daemon stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
