package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/proxymarket/admin-api/config"
	"github.com/proxymarket/admin-api/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting proxy-admin",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"vault_mode", cfg.Vault,
		"upstream", cfg.Upstream.BaseURL)

	deps := &bootstrap.ServiceDeps{Config: &cfg, Logger: logger}

	if cfg.Vault == config.VaultModePostgres {
		db, dbErr := bootstrap.ConnectDB(cfg.Postgres, logger)
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database failed", "error", cerr)
			}
		}()

		if cfg.Postgres.RunMigrationsOnStart {
			if mErr := bootstrap.RunMigrations(ctx, db, logger); mErr != nil {
				return mErr
			}
		}
		deps.DB = db
	}

	if cfg.Vault == config.VaultModeRedis {
		redisClient, rErr := bootstrap.ConnectRedis(cfg.Redis, logger)
		if rErr != nil {
			return rErr
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
		deps.RedisClient = redisClient
	}

	services, err := bootstrap.NewServices(ctx, deps)
	if err != nil {
		return err
	}

	return bootstrap.Run(ctx, bootstrap.RunConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
}
