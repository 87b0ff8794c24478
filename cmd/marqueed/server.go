package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	v1 "github.com/vmunix/marquee/internal/api/v1"
	"github.com/vmunix/marquee/internal/catalog"
	"github.com/vmunix/marquee/internal/cleanup"
	"github.com/vmunix/marquee/internal/config"
	"github.com/vmunix/marquee/internal/database"
	"github.com/vmunix/marquee/internal/omdb"
	"github.com/vmunix/marquee/internal/server"
	"github.com/vmunix/marquee/internal/tmdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// lockPath places the daemon lock next to the database file.
func lockPath(dbPath string) string {
	if dbPath == database.MemoryPath {
		return filepath.Join(os.TempDir(), "marqueed.lock")
	}
	return dbPath + ".lock"
}

func runServer(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	if cfg.Database.Path != database.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	// One daemon per cache file
	lock := flock.New(lockPath(cfg.Database.Path))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another marqueed is using %s", cfg.Database.Path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release daemon lock", "error", err)
		}
	}()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Providers
	omdbClient := omdb.NewClient(cfg.OMDb.APIKey, omdb.WithBaseURL(cfg.OMDb.BaseURL))
	if !omdbClient.Configured() {
		logger.Warn("omdb api key not set; provider lookups will fail", "component", "omdb")
	}

	opts := []catalog.Option{
		catalog.WithTTL(cfg.Cache.TTL),
		catalog.WithConcurrency(cfg.Cache.Concurrency),
		catalog.WithLogger(logger.With("component", "catalog")),
	}
	if cfg.TMDB != nil {
		opts = append(opts, catalog.WithEnricher(tmdb.NewClient(cfg.TMDB.APIKey, tmdb.WithBaseURL(cfg.TMDB.BaseURL))))
	}
	svc := catalog.NewService(catalog.NewStore(db), omdbClient, opts...)

	// Cleanup: manual runs are always available; the schedule only when enabled.
	hour, minute, err := config.ParseClock(cfg.Cleanup.DailyAt)
	if err != nil {
		return fmt.Errorf("cleanup.daily_at: %w", err)
	}
	cleanupCfg := cleanup.Config{Hour: hour, Minute: minute}
	if !cfg.IsProduction() {
		cleanupCfg.Interval = cfg.Cleanup.Interval
	}
	scheduler, err := cleanup.New(svc, cleanupCfg, logger)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	var jobs []server.Scheduler
	if cfg.Cleanup.Enabled {
		jobs = append(jobs, scheduler)
	}

	// HTTP API
	api, err := v1.New(v1.ServerDeps{Catalog: svc, Cleaner: scheduler}, logger)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	logger.Info("server starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"environment", cfg.Server.Environment,
		"ttl", svc.TTL(),
		"tmdb", cfg.TMDB != nil,
		"cleanup", cfg.Cleanup.Enabled,
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(server.Config{Addr: addr}, v1.Handler(mux, logger), logger, jobs...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
