// Package store talks to the upstream store REST API that owns the
// catalog, customers, coupons and reviews.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBodyBytes = 8 << 20

// APIError is a non-2xx response from the store API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("store api returned %d %s", e.Status, http.StatusText(e.Status))
}

// Client is a thin REST client. A zero Timeout means no client-side limit
// beyond the caller's context.
type Client struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

// WithToken returns a copy that authenticates as the given bearer token.
// An empty token keeps the configured one.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	if token = strings.TrimSpace(token); token != "" {
		cp.Token = token
	}
	return &cp
}

// GetAll fetches one raw list page. The body is returned untouched because
// its pagination envelope varies per endpoint.
func (c *Client) GetAll(ctx context.Context, resource string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, resource, params)
}

// Lookup fetches a reference list (attribute groups, roles, languages).
func (c *Client) Lookup(ctx context.Context, resource string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, resource, nil)
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("delete %s: empty id", resource)
	}
	_, err := c.do(ctx, http.MethodDelete, strings.TrimRight(resource, "/")+"/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	target := c.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage pulls a readable message out of an error body:
// {"message": ...}, {"error": ...} or {"error": {"message": ...}}.
func errorMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}
