package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Client is the shared clinic API client. It attaches the bearer token and a
// request ID to every call, decodes the API's JSON envelopes, and converts
// failures into *APIError. It never retries on its own; callers re-issue.
type Client struct {
	baseURL *url.URL
	token   string
	httpc   *http.Client
}

func clientLogger() *slog.Logger {
	return slog.Default().With("component", "restclient")
}

func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must include scheme and host", baseURL)
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: u,
		token:   token,
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// Ping verifies connectivity on startup the same way the dashboards do: a
// single liveness probe, no retries.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Get(pingCtx, "/health/live", nil, nil); err != nil {
		return fmt.Errorf("ping clinic api: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// listEnvelope is the paginated list shape; some endpoints return bare arrays
// instead, so Results stays raw until GetList picks a decoding.
type listEnvelope struct {
	Results json.RawMessage `json:"results"`
	Count   *int            `json:"count"`
}

// GetList decodes a list endpoint into out (a pointer to a slice), accepting
// both {"results": [...], "count": n} envelopes and bare arrays. The returned
// count is the server's when an envelope provides one, else the slice length.
func (c *Client) GetList(ctx context.Context, path string, query url.Values, out any) (int, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return 0, err
	}

	data := bytes.TrimSpace(raw)
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, out); err != nil {
			return 0, fmt.Errorf("decode list body: %w", err)
		}
		return reflect.ValueOf(out).Elem().Len(), nil
	}

	var env listEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, fmt.Errorf("decode list envelope: %w", err)
	}
	if env.Results == nil {
		return 0, fmt.Errorf("list response missing results field")
	}
	if err := json.Unmarshal(env.Results, out); err != nil {
		return 0, fmt.Errorf("decode list results: %w", err)
	}
	if env.Count != nil {
		return *env.Count, nil
	}
	return reflect.ValueOf(out).Elem().Len(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		clientLogger().WarnContext(ctx, "request failed before response",
			"method", method, "path", path, "error", err)
		return &APIError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		apiErr := newAPIError(resp.StatusCode, data)
		clientLogger().WarnContext(ctx, "api rejected request",
			"method", method, "path", path,
			"status", resp.StatusCode, "message", apiErr.Message,
			"duration", time.Since(start))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
