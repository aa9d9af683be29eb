package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-gateway/internal/config"
)

// TokenSource supplies the current bearer token, or "" when anonymous.
type TokenSource interface {
	Token() string
}

// Error is the single failure shape every backend call maps to. Status 0
// means the request never got a response (network failure); otherwise it is
// the backend's HTTP status with whatever {message} body it sent.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error %d", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNetwork reports whether the request failed before the backend answered.
func (e *Error) IsNetwork() bool { return e.Status == 0 }

// Client is the single point of outbound HTTP access. Every other component
// reaches the storefront backend through it; none of them build requests
// themselves. No retries happen here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

func New(cfg *config.Backend) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
	}
}

// SetTokenSource wires the session store in after construction; the session
// store itself needs the client, so one of the two references is set late.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: decodeMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return ""
	}
	return payload.Message
}
