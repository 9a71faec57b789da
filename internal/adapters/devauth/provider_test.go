package devauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxymarket/admin-api/internal/ports"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(Config{
		Email:    "dev@proxymarket.test",
		Password: "dev-password",
		Role:     "Super Admin",
	})
	require.NoError(t, err)
	return p
}

func TestProvider_LoginSuccess(t *testing.T) {
	p := newTestProvider(t)

	data, err := p.Login(context.Background(), ports.Credentials{Email: "dev@proxymarket.test", Password: "dev-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, int(8*time.Hour/time.Second), data.ExpiresIn)
	assert.Contains(t, string(data.Profile), `"role":"Super Admin"`)
}

func TestProvider_LoginCaseInsensitiveEmail(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.Login(context.Background(), ports.Credentials{Email: "  DEV@proxymarket.test ", Password: "dev-password"})
	assert.NoError(t, err)
}

func TestProvider_LoginRejections(t *testing.T) {
	p := newTestProvider(t)

	for _, creds := range []ports.Credentials{
		{Email: "dev@proxymarket.test", Password: "wrong"},
		{Email: "other@proxymarket.test", Password: "dev-password"},
	} {
		_, err := p.Login(context.Background(), creds)
		require.Error(t, err)
		assert.Equal(t, "Identifiants invalides", err.Error())
	}
}

func TestProvider_TokensAreUnique(t *testing.T) {
	p := newTestProvider(t)

	a, err := p.Login(context.Background(), ports.Credentials{Email: "dev@proxymarket.test", Password: "dev-password"})
	require.NoError(t, err)
	b, err := p.Login(context.Background(), ports.Credentials{Email: "dev@proxymarket.test", Password: "dev-password"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Password: "x"})
	assert.Error(t, err, "email is required")

	_, err = NewProvider(Config{Email: "dev@proxymarket.test"})
	assert.Error(t, err, "a password or hash is required")
}
