package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxymarket/admin-api/internal/adapters/marketapi"
	apperrors "github.com/proxymarket/admin-api/internal/errors"
)

// mockUpstream is a test double for marketapi.Client.
type mockUpstream struct {
	listFunc   func(ctx context.Context, token, path string, query url.Values) (marketapi.ListResult, error)
	getFunc    func(ctx context.Context, token, path string) (json.RawMessage, error)
	createFunc func(ctx context.Context, token, path string, body any) (json.RawMessage, error)
	updateFunc func(ctx context.Context, token, path string, body any) (json.RawMessage, error)
	deleteFunc func(ctx context.Context, token, path string) error
}

func (m *mockUpstream) List(ctx context.Context, token, path string, query url.Values) (marketapi.ListResult, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, token, path, query)
	}
	return marketapi.ListResult{Items: json.RawMessage(`[]`), Total: 0}, nil
}

func (m *mockUpstream) Get(ctx context.Context, token, path string) (json.RawMessage, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, token, path)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockUpstream) Create(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, token, path, body)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockUpstream) Update(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, token, path, body)
	}
	return json.RawMessage(`{}`), nil
}

func (m *mockUpstream) Delete(ctx context.Context, token, path string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, token, path)
	}
	return nil
}

func resourceFixture(upstream *mockUpstream) *ResourceHandlers {
	return &ResourceHandlers{Market: upstream, Sessions: &mockSessionManager{}}
}

func TestResourceHandlers_ListShops(t *testing.T) {
	var gotToken, gotPath string
	var gotQuery url.Values
	upstream := &mockUpstream{
		listFunc: func(_ context.Context, token, path string, query url.Values) (marketapi.ListResult, error) {
			gotToken, gotPath, gotQuery = token, path, query
			return marketapi.ListResult{
				Items: json.RawMessage(`[{"id":1,"name":"Chez Awa"}]`),
				Total: 1,
			}, nil
		},
	}
	h := resourceFixture(upstream)

	req := withScope(httptest.NewRequest(http.MethodGet, "/api/shops?page=2&q=awa", nil), "scope-1")
	rec := httptest.NewRecorder()
	h.ListShops(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jwt-token", gotToken)
	assert.Equal(t, "/admin/shops", gotPath)
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "awa", gotQuery.Get("q"))

	var payload struct {
		Items json.RawMessage `json:"items"`
		Total int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Total)
	assert.Contains(t, string(payload.Items), "Chez Awa")
}

func TestResourceHandlers_NoToken(t *testing.T) {
	h := &ResourceHandlers{
		Market: &mockUpstream{},
		Sessions: &mockSessionManager{
			tokenFunc: func(context.Context, string) (string, bool) { return "", false },
		},
	}

	req := withScope(httptest.NewRequest(http.MethodGet, "/api/shops", nil), "scope-1")
	rec := httptest.NewRecorder()
	h.ListShops(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResourceHandlers_CreateShop_Valid(t *testing.T) {
	var gotPath string
	var gotBody any
	upstream := &mockUpstream{
		createFunc: func(_ context.Context, _, path string, body any) (json.RawMessage, error) {
			gotPath, gotBody = path, body
			return json.RawMessage(`{"id":7}`), nil
		},
	}
	h := resourceFixture(upstream)

	body := `{"name":"Chez Awa","email":"awa@proxymarket.test","phone":"+221771234567"}`
	req := withScope(httptest.NewRequest(http.MethodPost, "/api/shops", strings.NewReader(body)), "scope-1")
	rec := httptest.NewRecorder()
	h.CreateShop(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/admin/shops", gotPath)
	require.NotNil(t, gotBody)
	assert.Contains(t, rec.Body.String(), `"id":7`)
}

func TestResourceHandlers_CreateShop_ValidationFailure(t *testing.T) {
	created := false
	upstream := &mockUpstream{
		createFunc: func(context.Context, string, string, any) (json.RawMessage, error) {
			created = true
			return nil, nil
		},
	}
	h := resourceFixture(upstream)

	req := withScope(httptest.NewRequest(http.MethodPost, "/api/shops", strings.NewReader(`{"name":""}`)), "scope-1")
	rec := httptest.NewRecorder()
	h.CreateShop(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, created, "invalid payloads must not reach the marketplace API")
	assert.Contains(t, rec.Body.String(), "obligatoire")
}

func TestResourceHandlers_GetShop_UpstreamNotFound(t *testing.T) {
	upstream := &mockUpstream{
		getFunc: func(context.Context, string, string) (json.RawMessage, error) {
			return nil, apperrors.NotFound("Boutique introuvable.")
		},
	}
	h := resourceFixture(upstream)

	req := withScope(httptest.NewRequest(http.MethodGet, "/api/shops/9", nil), "scope-1")
	req.SetPathValue("id", "9")
	rec := httptest.NewRecorder()
	h.GetShop(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceHandlers_UpdateOrderStatus(t *testing.T) {
	var gotPath string
	upstream := &mockUpstream{
		updateFunc: func(_ context.Context, _, path string, _ any) (json.RawMessage, error) {
			gotPath = path
			return json.RawMessage(`{"id":3,"status":"shipped"}`), nil
		},
	}
	h := resourceFixture(upstream)

	req := withScope(httptest.NewRequest(http.MethodPatch, "/api/orders/3/status", strings.NewReader(`{"status":"shipped"}`)), "scope-1")
	req.SetPathValue("id", "3")
	rec := httptest.NewRecorder()
	h.UpdateOrderStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/admin/orders/3/status", gotPath)
}

func TestResourceHandlers_UpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	h := resourceFixture(&mockUpstream{})

	req := withScope(httptest.NewRequest(http.MethodPatch, "/api/orders/3/status", strings.NewReader(`{"status":"teleported"}`)), "scope-1")
	req.SetPathValue("id", "3")
	rec := httptest.NewRecorder()
	h.UpdateOrderStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceHandlers_DeleteBanner(t *testing.T) {
	var gotPath string
	upstream := &mockUpstream{
		deleteFunc: func(_ context.Context, _, path string) error {
			gotPath = path
			return nil
		},
	}
	h := resourceFixture(upstream)

	req := withScope(httptest.NewRequest(http.MethodDelete, "/api/banners/12", nil), "scope-1")
	req.SetPathValue("id", "12")
	rec := httptest.NewRecorder()
	h.DeleteBanner(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/admin/banners/12", gotPath)
}
