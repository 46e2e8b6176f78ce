// Package client provides an HTTP client for the comment backend.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/comment-panel/internal/auth"
	"github.com/evcraddock/comment-panel/internal/comment"
)

// ErrUnavailable wraps every transport, status and decoding failure.
var ErrUnavailable = errors.New("backend unavailable")

// Backend paths.
const (
	PathComments       = "/data"
	PathDeleteComments = "/delete-comments"
	PathUser           = "/user"
)

// Client is an HTTP client for the comment backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cookies    []*http.Cookie
}

// New creates a new backend client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ForRequest returns a copy of the client that forwards the visitor's cookies,
// so the backend sees the visitor's session.
func (c *Client) ForRequest(r *http.Request) *Client {
	cp := *c
	cp.cookies = r.Cookies()
	return &cp
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchComments returns comments matching the criteria in the order the
// backend sorted them.
func (c *Client) FetchComments(ctx context.Context, criteria comment.FilterCriteria) ([]*comment.Comment, error) {
	path := PathComments
	if q := criteria.Values().Encode(); q != "" {
		path += "?" + q
	}

	var comments []*comment.Comment
	if err := c.get(ctx, path, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*comment.Comment{}
	}
	return comments, nil
}

// DeleteAllComments asks the backend to delete every comment. The response body is ignored.
func (c *Client) DeleteAllComments(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathDeleteComments, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

// FetchSessionState returns the visitor's login state.
func (c *Client) FetchSessionState(ctx context.Context) (*auth.Status, error) {
	var status auth.Status
	if err := c.get(ctx, PathUser, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, result)
}

// do executes an HTTP request and decodes a JSON body into result when non-nil.
func (c *Client) do(req *http.Request, result interface{}) error {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: %s", ErrUnavailable, req.Method, req.URL.Path, http.StatusText(resp.StatusCode))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
		}
	}

	return nil
}
