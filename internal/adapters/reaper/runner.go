// Package reaper runs the periodic sweep that removes expired session
// rows from the Postgres vault. Redis deployments do not need it.
package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Purger is the slice of the vault the sweep needs.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Purger Purger
	Logger *slog.Logger
	// Interval defaults to 10 minutes.
	Interval time.Duration
}

// Runner sweeps expired session entries on a fixed interval until its
// context is cancelled.
type Runner struct {
	purger   Purger
	logger   *slog.Logger
	interval time.Duration
}

// NewRunner creates a sweep runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Purger == nil {
		return nil, errors.New("reaper: purger is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Runner{purger: opts.Purger, logger: logger, interval: interval}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting session sweep", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	n, err := r.purger.PurgeExpired(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "session sweep failed", "error", err)
		return
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "purged expired session entries", "count", n)
	}
}
