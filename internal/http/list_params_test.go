package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListParams_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/shops", nil)
	p := ParseListParams(r)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPerPage, p.PerPage)
	assert.Empty(t, p.Query)
}

func TestParseListParams_ClampsAndTrims(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/shops?page=-3&per_page=9999&q=%20caf%C3%A9%20", nil)
	p := ParseListParams(r)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, maxPerPage, p.PerPage)
	assert.Equal(t, "café", p.Query)
}

func TestListParams_Values(t *testing.T) {
	v := ListParams{Page: 3, PerPage: 50, Query: "dakar"}.Values()

	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "50", v.Get("per_page"))
	assert.Equal(t, "dakar", v.Get("q"))

	v = ListParams{Page: 1, PerPage: 20}.Values()
	assert.False(t, v.Has("q"))
}
