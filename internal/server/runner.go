// Package server runs the daemon's long-lived components.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 30 * time.Second

// Scheduler is a background job that runs until its context is canceled.
type Scheduler interface {
	Run(ctx context.Context) error
}

// Config for the runner.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Runner manages the HTTP server and background jobs.
type Runner struct {
	config  Config
	handler http.Handler
	jobs    []Scheduler
	logger  *slog.Logger

	ready chan net.Addr
}

// NewRunner creates a new runner. jobs may be empty.
func NewRunner(cfg Config, handler http.Handler, logger *slog.Logger, jobs ...Scheduler) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Runner{
		config:  cfg,
		handler: handler,
		jobs:    jobs,
		logger:  logger.With("component", "runner"),
		ready:   make(chan net.Addr, 1),
	}
}

// Ready delivers the bound listen address once the server accepts connections.
func (r *Runner) Ready() <-chan net.Addr {
	return r.ready
}

// Run starts the HTTP server and every job.
// It blocks until the context is canceled or a component fails, then shuts
// the server down gracefully.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", ln.Addr().String())
		r.ready <- ln.Addr()
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	for _, job := range r.jobs {
		g.Go(func() error {
			return job.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		r.logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
