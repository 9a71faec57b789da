package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/proxymarket/admin-api/config"
	"github.com/proxymarket/admin-api/internal/adapters/reaper"
	httpx "github.com/proxymarket/admin-api/internal/http"
)

// RunConfig groups the dependencies for Run.
type RunConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// Run starts the HTTP server and, in postgres vault mode, the expired-entry
// reaper. It blocks until a termination signal arrives or a component
// fails, then shuts the server down gracefully.
func Run(ctx context.Context, cfg RunConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Sessions:     cfg.Services.Sessions,
		Reports:      cfg.Services.Reports,
		Market:       cfg.Services.Market,
		SSO:          cfg.Services.SSO,
		SSOSessions:  cfg.Services.Sessions,
		CookieDomain: cfg.Config.HTTP.CookieDomain,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:         cfg.Config.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Config.HTTP.ReadTimeout,
		WriteTimeout: cfg.Config.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Config.Reaper.Enabled && cfg.Services.SessionVault != nil {
		runner, err := reaper.NewRunner(reaper.RunnerOptions{
			Purger:   cfg.Services.SessionVault,
			Logger:   logger,
			Interval: cfg.Config.Reaper.Interval,
		})
		if err != nil {
			return err
		}
		group.Go(func() error {
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Config.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
