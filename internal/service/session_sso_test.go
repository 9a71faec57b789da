package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxymarket/admin-api/internal/ports"
)

func TestSessionService_CompleteSSO_InstallsSession(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t)
	ctx := context.Background()

	result := f.svc.CompleteSSO(ctx, testScope, ports.LoginData{
		Token:     "sso-jwt",
		ExpiresIn: 3600,
		Profile:   json.RawMessage(`{"id":"u-9","email":"sso@proxymarket.test","role":{"slug":"admin","name":"Admin"}}`),
	})

	require.True(t, result.Success)
	require.NotNil(t, result.User)
	assert.Equal(t, "admin", result.User.Role)
	assert.Equal(t, "Admin", result.User.RoleLabel)

	snapshot := f.svc.Restore(ctx, testScope)
	require.True(t, snapshot.Authenticated)

	token, ok := f.svc.Token(ctx, testScope)
	require.True(t, ok)
	assert.Equal(t, "sso-jwt", token)
}

func TestSessionService_CompleteSSO_RejectsEmptyPayload(t *testing.T) {
	t.Parallel()
	f := newSessionFixture(t)

	result := f.svc.CompleteSSO(context.Background(), testScope, ports.LoginData{})

	assert.False(t, result.Success)
	assert.Equal(t, "Échec de la connexion", result.Error)
	assert.False(t, f.vault.Has("session:"+testScope+":token"))
}
