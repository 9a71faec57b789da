package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/proxymarket/admin-api/internal/domain/auth"
	mockauth "github.com/proxymarket/admin-api/internal/mocks/auth"
	"github.com/proxymarket/admin-api/internal/ports"
)

const testScope = "b2c9f1de"

type sessionFixture struct {
	auth  *mockauth.MockAuthenticator
	vault *mockauth.MemoryVault
	svc   *SessionService
	now   time.Time
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		auth:  mockauth.NewMockAuthenticator(),
		vault: mockauth.NewMemoryVault(),
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.vault.Clock = func() time.Time { return f.now }
	f.svc = NewSessionService(SessionServiceOptions{
		Auth:  f.auth,
		Vault: f.vault,
		Clock: func() time.Time { return f.now },
	})
	return f
}

// seed persists a token record and profile directly, as a prior login would.
func (f *sessionFixture) seed(t *testing.T, rec domainauth.TokenRecord, profile string) {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	f.vault.Put("session:"+testScope+":token", string(data))
	f.vault.Put("session:"+testScope+":profile", profile)
}

func futureRecord(now time.Time) domainauth.TokenRecord {
	return domainauth.TokenRecord{Token: "abc", ExpiresAt: now.Add(time.Hour).UnixMilli()}
}

func TestSessionService_LoginSuccess(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.auth.LoginFunc = func(context.Context, ports.Credentials) (ports.LoginData, error) {
		return ports.LoginData{
			Token:     "abc",
			ExpiresIn: 60,
			Profile:   json.RawMessage(`{"id":"1","email":"a@b.com"}`),
		}, nil
	}

	res := f.svc.Login(context.Background(), testScope, "a@b.com", "pw")
	require.True(t, res.Success)
	require.NotNil(t, res.User)
	assert.Equal(t, "guest", res.User.Role)
	assert.Equal(t, "Invité", res.User.RoleLabel)

	raw, ok := f.vault.Raw("session:" + testScope + ":token")
	require.True(t, ok)
	rec, err := domainauth.DecodeTokenRecord([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.Token)
	assert.GreaterOrEqual(t, rec.ExpiresAt, f.now.UnixMilli()+59_000)
	assert.LessOrEqual(t, rec.ExpiresAt, f.now.UnixMilli()+61_000)

	snap := f.svc.Restore(context.Background(), testScope)
	assert.True(t, snap.Authenticated)
}

func TestSessionService_LoginDefaultTTL(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.auth.LoginFunc = func(context.Context, ports.Credentials) (ports.LoginData, error) {
		// No expiresIn from upstream.
		return ports.LoginData{Token: "abc", Profile: json.RawMessage(`{"id":"1"}`)}, nil
	}

	res := f.svc.Login(context.Background(), testScope, "a@b.com", "pw")
	require.True(t, res.Success)

	raw, ok := f.vault.Raw("session:" + testScope + ":token")
	require.True(t, ok)
	rec, err := domainauth.DecodeTokenRecord([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(DefaultTokenTTL).UnixMilli(), rec.ExpiresAt)
}

func TestSessionService_LoginEmptyCredentials(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	for _, creds := range [][2]string{{"", "pw"}, {"a@b.com", ""}, {"   ", "pw"}} {
		res := f.svc.Login(context.Background(), testScope, creds[0], creds[1])
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	}
	assert.Empty(t, f.auth.LoginCalls, "collaborator is never called without credentials")
}

func TestSessionService_LoginRejected(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.auth.LoginFunc = func(context.Context, ports.Credentials) (ports.LoginData, error) {
		return ports.LoginData{}, errors.New("Identifiants invalides")
	}

	res := f.svc.Login(context.Background(), testScope, "a@b.com", "bad")
	assert.False(t, res.Success)
	assert.Equal(t, "Identifiants invalides", res.Error)
	assert.False(t, f.vault.Has("session:"+testScope+":token"), "state untouched on failure")
	assert.False(t, f.vault.Has("session:"+testScope+":profile"))
}

func TestSessionService_LoginUnusablePayload(t *testing.T) {
	t.Parallel()

	cases := map[string]ports.LoginData{
		"missing token":     {Profile: json.RawMessage(`{"id":"1"}`)},
		"missing profile":   {Token: "abc"},
		"malformed profile": {Token: "abc", Profile: json.RawMessage(`{`)},
		"non-object":        {Token: "abc", Profile: json.RawMessage(`"admin"`)},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newSessionFixture(t)
			f.auth.LoginFunc = func(context.Context, ports.Credentials) (ports.LoginData, error) {
				return data, nil
			}
			res := f.svc.Login(context.Background(), testScope, "a@b.com", "pw")
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestSessionService_LoginPersistFailure(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.vault.SetErr = errors.New("backend down")

	res := f.svc.Login(context.Background(), testScope, "a@b.com", "pw")
	assert.False(t, res.Success)
	assert.False(t, f.vault.Has("session:"+testScope+":token"))
}

func TestSessionService_RestoreExpiryBoundary(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	profile := `{"id":"1","email":"a@b.com","role":"admin"}`

	// Expiry exactly at now is already expired: strict inequality.
	f.seed(t, domainauth.TokenRecord{Token: "abc", ExpiresAt: f.now.UnixMilli()}, profile)
	snap := f.svc.Restore(context.Background(), testScope)
	assert.False(t, snap.Authenticated)
	assert.Nil(t, snap.User)
	assert.False(t, f.vault.Has("session:"+testScope+":token"), "expired entries are cleared")
	assert.False(t, f.vault.Has("session:"+testScope+":profile"))

	// One millisecond in the future is enough.
	f.seed(t, domainauth.TokenRecord{Token: "abc", ExpiresAt: f.now.UnixMilli() + 1}, profile)
	snap = f.svc.Restore(context.Background(), testScope)
	assert.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)
	assert.Equal(t, "admin", snap.User.Role)
}

func TestSessionService_RestoreMalformedEntries(t *testing.T) {
	t.Parallel()

	malformed := []string{`{`, `null`, `42`, ``}
	for i, bad := range malformed {
		for _, slot := range []string{"token", "profile"} {
			t.Run(fmt.Sprintf("%s_%d", slot, i), func(t *testing.T) {
				t.Parallel()

				f := newSessionFixture(t)
				f.seed(t, futureRecord(f.now), `{"id":"1"}`)
				f.vault.Put("session:"+testScope+":"+slot, bad)

				snap := f.svc.Restore(context.Background(), testScope)
				assert.False(t, snap.Authenticated)
				assert.False(t, f.vault.Has("session:"+testScope+":token"))
				assert.False(t, f.vault.Has("session:"+testScope+":profile"))
			})
		}
	}
}

func TestSessionService_RestoreMissingProfile(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	data, err := json.Marshal(futureRecord(f.now))
	require.NoError(t, err)
	f.vault.Put("session:"+testScope+":token", string(data))

	snap := f.svc.Restore(context.Background(), testScope)
	assert.False(t, snap.Authenticated)
	assert.False(t, f.vault.Has("session:"+testScope+":token"), "orphan token is cleared")
}

func TestSessionService_RestoreSelfHeals(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	// Stale format: role persisted as an object.
	f.seed(t, futureRecord(f.now), `{"id":"1","email":"a@b.com","role":{"slug":"Super Admin"}}`)

	snap := f.svc.Restore(context.Background(), testScope)
	require.True(t, snap.Authenticated)
	assert.Equal(t, "super_admin", snap.User.Role)
	assert.Equal(t, "Super Admin", snap.User.RoleLabel)

	raw, ok := f.vault.Raw("session:" + testScope + ":profile")
	require.True(t, ok)
	assert.Contains(t, raw, `"role":"super_admin"`)
	assert.Contains(t, raw, `"roleLabel":"Super Admin"`)
}

func TestSessionService_RestoreVaultError(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.vault.GetErr = errors.New("backend down")

	snap := f.svc.Restore(context.Background(), testScope)
	assert.False(t, snap.Authenticated)
}

func TestSessionService_LogoutUnconditionalClearing(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.seed(t, futureRecord(f.now), `{"id":"1"}`)
	f.auth.LogoutFunc = func(context.Context, string) error {
		return errors.New("upstream exploded")
	}

	f.svc.Logout(context.Background(), testScope)

	assert.Equal(t, []string{"abc"}, f.auth.LogoutCalls, "upstream logout attempted with the token")
	assert.False(t, f.vault.Has("session:"+testScope+":token"))
	assert.False(t, f.vault.Has("session:"+testScope+":profile"))
	assert.False(t, f.svc.Restore(context.Background(), testScope).Authenticated)
}

func TestSessionService_LogoutWithoutSession(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.svc.Logout(context.Background(), testScope)
	assert.Empty(t, f.auth.LogoutCalls, "no token, no upstream call")
}

func TestSessionService_UpdateUserNoopWhenUnauthenticated(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	name := "X"
	got := f.svc.UpdateUser(context.Background(), testScope, domainauth.ProfilePatch{Name: &name})
	assert.Nil(t, got)
	assert.False(t, f.vault.Has("session:"+testScope+":profile"))
}

func TestSessionService_UpdateUserMergesAndPersists(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.seed(t, futureRecord(f.now), `{"id":"1","email":"a@b.com","name":"Anna"}`)
	tokenBefore, _ := f.vault.Raw("session:" + testScope + ":token")

	roleName := "Commercial"
	typ := "ignored"
	got := f.svc.UpdateUser(context.Background(), testScope, domainauth.ProfilePatch{RoleName: &roleName, Type: &typ})
	require.NotNil(t, got)
	assert.Equal(t, "Anna", got.Name, "unpatched fields keep prior values")
	assert.Equal(t, "commercial", got.Role, "role_name outranks type")
	assert.Equal(t, "Commercial", got.RoleLabel)

	raw, ok := f.vault.Raw("session:" + testScope + ":profile")
	require.True(t, ok)
	assert.Contains(t, raw, `"role":"commercial"`)

	tokenAfter, _ := f.vault.Raw("session:" + testScope + ":token")
	assert.Equal(t, tokenBefore, tokenAfter, "token record is never touched")
}

func TestSessionService_TokenForProxy(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	_, ok := f.svc.Token(context.Background(), testScope)
	assert.False(t, ok)

	f.seed(t, futureRecord(f.now), `{"id":"1"}`)
	token, ok := f.svc.Token(context.Background(), testScope)
	require.True(t, ok)
	assert.Equal(t, "abc", token)
}

func TestSessionService_ScopesAreIndependent(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	res := f.svc.Login(context.Background(), "scope-a", "a@b.com", "pw")
	require.True(t, res.Success)

	assert.False(t, f.svc.Restore(context.Background(), "scope-b").Authenticated)
	assert.True(t, f.svc.Restore(context.Background(), "scope-a").Authenticated)

	f.svc.Logout(context.Background(), "scope-a")
	assert.False(t, f.svc.Restore(context.Background(), "scope-a").Authenticated)
}

func TestSessionService_LoginErrorMessageFallback(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	f.auth.LoginFunc = func(context.Context, ports.Credentials) (ports.LoginData, error) {
		return ports.LoginData{}, errors.New("   ")
	}

	res := f.svc.Login(context.Background(), testScope, "a@b.com", "pw")
	assert.False(t, res.Success)
	assert.False(t, strings.TrimSpace(res.Error) == "", "blank upstream message falls back to the generic one")
}
