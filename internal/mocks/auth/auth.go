// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/proxymarket/admin-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Authenticator = (*MockAuthenticator)(nil)
	_ ports.Vault         = (*MemoryVault)(nil)
)

// MockAuthenticator simulates the upstream authentication collaborator.
type MockAuthenticator struct {
	LoginFunc  func(ctx context.Context, creds ports.Credentials) (ports.LoginData, error)
	LogoutFunc func(ctx context.Context, token string) error

	// Defaults used when LoginFunc is nil.
	Token     string
	ExpiresIn int
	Profile   json.RawMessage

	// Call tracking.
	LoginCalls  []ports.Credentials
	LogoutCalls []string
}

// NewMockAuthenticator creates a MockAuthenticator with a plain user profile.
func NewMockAuthenticator() *MockAuthenticator {
	return &MockAuthenticator{
		Token:   "mock-token",
		Profile: json.RawMessage(`{"id":"1","email":"admin@proxymarket.test","name":"Mock Admin","role":"Admin"}`),
	}
}

func (m *MockAuthenticator) Login(ctx context.Context, creds ports.Credentials) (ports.LoginData, error) {
	m.LoginCalls = append(m.LoginCalls, creds)
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return ports.LoginData{Token: m.Token, ExpiresIn: m.ExpiresIn, Profile: m.Profile}, nil
}

func (m *MockAuthenticator) Logout(ctx context.Context, token string) error {
	m.LogoutCalls = append(m.LogoutCalls, token)
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

// MemoryVault is an in-memory vault for unit tests. TTLs are honored against
// the injected clock when one is set, real time otherwise.
type MemoryVault struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	Clock   func() time.Time

	// Error injection.
	GetErr    error
	SetErr    error
	DeleteErr error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryVault creates an empty MemoryVault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{entries: make(map[string]memoryEntry)}
}

func (v *MemoryVault) now() time.Time {
	if v.Clock != nil {
		return v.Clock()
	}
	return time.Now()
}

func (v *MemoryVault) Get(_ context.Context, key string) (string, bool, error) {
	if v.GetErr != nil {
		return "", false, v.GetErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(v.now()) {
		delete(v.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (v *MemoryVault) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if v.SetErr != nil {
		return v.SetErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = v.now().Add(ttl)
	}
	v.entries[key] = e
	return nil
}

func (v *MemoryVault) Delete(_ context.Context, keys ...string) error {
	if v.DeleteErr != nil {
		return v.DeleteErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, k := range keys {
		delete(v.entries, k)
	}
	return nil
}

// Has reports raw key presence without TTL bookkeeping, for assertions.
func (v *MemoryVault) Has(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.entries[key]
	return ok
}

// Raw returns the stored value without TTL bookkeeping, for assertions.
func (v *MemoryVault) Raw(key string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[key]
	return e.value, ok
}

// Put stores a value directly, bypassing TTL logic, for test setup.
func (v *MemoryVault) Put(key, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[key] = memoryEntry{value: value}
}
