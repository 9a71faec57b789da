package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"github.com/proxymarket/admin-api/config"
	"github.com/proxymarket/admin-api/internal/adapters/devauth"
	"github.com/proxymarket/admin-api/internal/adapters/marketapi"
	"github.com/proxymarket/admin-api/internal/adapters/oidc"
	redisvault "github.com/proxymarket/admin-api/internal/adapters/redis"
	"github.com/proxymarket/admin-api/internal/data"
	"github.com/proxymarket/admin-api/internal/ports"
	"github.com/proxymarket/admin-api/internal/service"
)

// ServiceDeps carries the shared infrastructure the service layer needs.
type ServiceDeps struct {
	Config *config.AppConfig
	// DB is required when the vault mode is postgres.
	DB *sql.DB
	// RedisClient is required when the vault mode is redis.
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed services and adapters.
type ServiceContainer struct {
	Sessions *service.SessionService
	Reports  *service.ReportService
	Market   *marketapi.Client
	Vault    ports.Vault
	// SessionVault is set only in postgres vault mode; the reaper sweeps
	// its expired rows.
	SessionVault *data.SessionVault
	// SSO is nil unless an issuer URL is configured.
	SSO ports.SSOProvider
}

// NewServices constructs the service layer from configuration.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	market, err := marketapi.NewClient(marketapi.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Upstream.Timeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build marketplace client: %w", err)
	}

	container := &ServiceContainer{Market: market}

	if container.Vault, err = buildVault(deps); err != nil {
		return nil, err
	}
	if vault, ok := container.Vault.(*data.SessionVault); ok {
		container.SessionVault = vault
	}

	auth, err := buildAuthenticator(cfg, market)
	if err != nil {
		return nil, err
	}

	container.Sessions = service.NewSessionService(service.SessionServiceOptions{
		Auth:     auth,
		Vault:    container.Vault,
		Logger:   logger,
		TokenTTL: cfg.TokenTTL,
	})

	container.Reports, err = service.NewReportService(service.ReportServiceOptions{
		Fetcher: market,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build report service: %w", err)
	}

	if cfg.Auth.SSO.Enabled() {
		sso, ssoErr := oidc.NewProvider(ctx, oidc.ProviderConfig{
			IssuerURL:    cfg.Auth.SSO.IssuerURL,
			ClientID:     cfg.Auth.SSO.ClientID,
			ClientSecret: cfg.Auth.SSO.ClientSecret,
			RedirectURL:  cfg.Auth.SSO.RedirectURL,
			Scope:        cfg.Auth.SSO.Scope,
		})
		if ssoErr != nil {
			return nil, fmt.Errorf("build sso provider: %w", ssoErr)
		}
		container.SSO = sso
	}

	return container, nil
}

//nolint:ireturn // the vault mode decides the concrete type at runtime.
func buildVault(deps *ServiceDeps) (ports.Vault, error) {
	switch deps.Config.Vault {
	case config.VaultModePostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("vault mode %q requires a database connection", deps.Config.Vault)
		}
		return data.NewSessionVault(data.SessionVaultOptions{DB: deps.DB})
	case config.VaultModeRedis:
		if deps.RedisClient == nil {
			return nil, fmt.Errorf("vault mode %q requires a redis connection", deps.Config.Vault)
		}
		return redisvault.NewVault(deps.RedisClient), nil
	default:
		return nil, fmt.Errorf("unknown vault mode %q", deps.Config.Vault)
	}
}

//nolint:ireturn // the auth mode decides the concrete type at runtime.
func buildAuthenticator(cfg *config.AppConfig, market *marketapi.Client) (ports.Authenticator, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeDev:
		provider, err := devauth.NewProvider(devauth.Config{
			Email:    cfg.Auth.DevAuth.Email,
			Password: cfg.Auth.DevAuth.Password,
			Name:     cfg.Auth.DevAuth.Name,
			Role:     cfg.Auth.DevAuth.Role,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev authenticator: %w", err)
		}
		return provider, nil
	case config.AuthModeUpstream:
		return marketapi.NewAuthenticator(market), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
