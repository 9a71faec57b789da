package httpx

import (
	"context"

	domainauth "github.com/proxymarket/admin-api/internal/domain/auth"
)

type scopeContextKey struct{}

type identityContextKey struct{}

// SetScopeInContext stores the browser scope identifier in the context.
func SetScopeInContext(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext returns the browser scope identifier, or "" when the
// scope middleware did not run.
func ScopeFromContext(ctx context.Context) string {
	if scope, ok := ctx.Value(scopeContextKey{}).(string); ok {
		return scope
	}
	return ""
}

// SetIdentityInContext stores the restored identity in the context.
func SetIdentityInContext(ctx context.Context, identity *domainauth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity placed by RequireAuth, or nil
// for unauthenticated requests.
func IdentityFromContext(ctx context.Context) *domainauth.Identity {
	if identity, ok := ctx.Value(identityContextKey{}).(*domainauth.Identity); ok {
		return identity
	}
	return nil
}
