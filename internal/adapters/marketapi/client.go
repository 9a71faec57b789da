// Package marketapi is the HTTP client for the upstream Proxy Market
// REST API. It speaks the marketplace's {success, message, data} envelope
// and translates transport failures into human-readable messages before
// they reach the session core or the handlers.
package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	apperrors "github.com/proxymarket/admin-api/internal/errors"
)

const defaultTimeout = 30 * time.Second

// Messages shown to the dashboard when the upstream cannot answer. The
// admin UI is French-facing, as are the marketplace's own error messages.
const (
	msgUnreachable = "Impossible de contacter le serveur. Veuillez réessayer."
	msgServerError = "Le serveur a rencontré une erreur. Veuillez réessayer."
)

// envelope is the upstream response wrapper. Data is kept raw; list
// payload shapes vary per endpoint and are plucked with JMESPath.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Options groups parameters for NewClient.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is the upstream marketplace API client.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient constructs a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("marketapi: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("marketapi: invalid base URL: %w", err)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, http: hc, logger: logger}, nil
}

// Do performs a request against the upstream API and returns the envelope
// data. A non-success envelope comes back as an *AppError carrying the
// server's own message; transport and 5xx failures carry the generic
// unreachable/server-error messages.
func (c *Client) Do(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "upstream request failed", "method", method, "path", path, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstream, msgUnreachable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstream, msgUnreachable)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, apperrors.Upstream(msgServerError)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstream, msgServerError)
	}

	if !env.Success {
		return nil, envelopeError(resp.StatusCode, env.Message)
	}
	return env.Data, nil
}

// envelopeError maps a non-success envelope to the AppError taxonomy,
// keeping the server's message when it has one.
func envelopeError(status int, message string) error {
	message = strings.TrimSpace(message)
	switch {
	case status == http.StatusUnauthorized:
		if message == "" {
			message = "Session expirée. Veuillez vous reconnecter."
		}
		return apperrors.Unauthenticated(message)
	case status == http.StatusForbidden:
		if message == "" {
			message = "Accès refusé."
		}
		return apperrors.Forbidden(message)
	case status == http.StatusNotFound:
		if message == "" {
			message = "Ressource introuvable."
		}
		return apperrors.NotFound(message)
	case status == http.StatusConflict:
		if message == "" {
			message = "Conflit avec une donnée existante."
		}
		return apperrors.Conflict(message)
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		if message == "" {
			message = "Requête invalide."
		}
		return apperrors.Validation(message)
	default:
		if message == "" {
			message = msgServerError
		}
		return apperrors.Upstream(message)
	}
}

// ListResult carries a plucked list payload.
type ListResult struct {
	Items json.RawMessage `json:"items"`
	Total int             `json:"total"`
}

// List endpoints are not uniform: items live under "items", "data", or
// "results", and the total under "total" or "meta.total", depending on the
// endpoint's age. Each expression is tried in order.
var (
	itemExprs  = []string{"items", "data", "results"}
	totalExprs = []string{"total", "meta.total", "count"}
)

// List fetches a collection endpoint and normalizes its envelope into a
// ListResult. Query parameters pass through untouched.
func (c *Client) List(ctx context.Context, token, path string, query url.Values) (ListResult, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	data, err := c.Do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return ListResult{}, err
	}
	return pluckList(data)
}

func pluckList(data json.RawMessage) (ListResult, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return ListResult{}, apperrors.Wrap(err, apperrors.ErrCodeUpstream, msgServerError)
	}

	// A bare array is the simplest shape some endpoints still use.
	if arr, ok := decoded.([]any); ok {
		items, err := json.Marshal(arr)
		if err != nil {
			return ListResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode list")
		}
		return ListResult{Items: items, Total: len(arr)}, nil
	}

	res := ListResult{Items: json.RawMessage(`[]`)}
	for _, expr := range itemExprs {
		out, err := jmespath.Search(expr, decoded)
		if err != nil {
			continue
		}
		if arr, ok := out.([]any); ok {
			items, merr := json.Marshal(arr)
			if merr != nil {
				return ListResult{}, apperrors.Wrap(merr, apperrors.ErrCodeInternal, "encode list")
			}
			res.Items = items
			res.Total = len(arr)
			break
		}
	}
	for _, expr := range totalExprs {
		out, err := jmespath.Search(expr, decoded)
		if err != nil {
			continue
		}
		if n, ok := out.(float64); ok {
			res.Total = int(n)
			break
		}
	}
	return res, nil
}

// Get fetches a single entity.
func (c *Client) Get(ctx context.Context, token, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, token, nil)
}

// Create posts a new entity.
func (c *Client) Create(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, token, body)
}

// Update puts an entity.
func (c *Client) Update(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, token, body)
}

// Delete removes an entity.
func (c *Client) Delete(ctx context.Context, token, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, token, nil)
	return err
}
