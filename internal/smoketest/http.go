package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the muziki API, optionally with a bearer token.
type Client struct {
	baseURL string
	client  *http.Client
	token   string
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r response) decode(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decode %d response: %w", r.status, err)
	}
	return nil
}

// do sends method path with an optional JSON body and reads the whole response.
func (c *Client) do(ctx context.Context, method, path string, body any) (response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

// expect sends the request and fails unless the status matches.
func (c *Client) expect(ctx context.Context, method, path string, body any, status int) (response, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return resp, err
	}
	if resp.status != status {
		return resp, fmt.Errorf("%w: %s %s returned %d, want %d: %s",
			ErrUnexpectedHTTP, method, path, resp.status, status, bytes.TrimSpace(resp.body))
	}
	return resp, nil
}
