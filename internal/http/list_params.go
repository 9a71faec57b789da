package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListParams carries the pagination and search inputs the dashboard list
// views send. Out-of-range values clamp instead of failing.
type ListParams struct {
	Page    int
	PerPage int
	Query   string
}

// ParseListParams reads list parameters from the request query string.
func ParseListParams(r *http.Request) ListParams {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return ListParams{
		Page:    page,
		PerPage: perPage,
		Query:   strings.TrimSpace(q.Get("q")),
	}
}

// Values renders the parameters in the form the marketplace API expects.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("per_page", strconv.Itoa(p.PerPage))
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	return v
}
