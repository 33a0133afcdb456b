// Package rest is the shared HTTP plumbing for the platform adapters: JSON
// and form-encoded requests, pluggable authentication, and normalization of
// upstream failures into domain.UpstreamError values.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tjr-trades/staffops/internal/core/domain"
)

const defaultTimeout = 30 * time.Second

// Authenticator attaches credentials to an outgoing request.
type Authenticator func(ctx context.Context, req *http.Request) error

// BearerAuth authenticates with a static long-lived API key.
func BearerAuth(key string) Authenticator {
	return func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+key)
		return nil
	}
}

// BasicAuth authenticates with a username/password pair (telephony style).
func BasicAuth(username, password string) Authenticator {
	return func(_ context.Context, req *http.Request) error {
		req.SetBasicAuth(username, password)
		return nil
	}
}

// TokenSourceAuth authenticates with a self-refreshing OAuth token source.
func TokenSourceAuth(ts oauth2.TokenSource) Authenticator {
	return func(_ context.Context, req *http.Request) error {
		tok, err := ts.Token()
		if err != nil {
			return fmt.Errorf("token source: %w", err)
		}
		tok.SetAuthHeader(req)
		return nil
	}
}

// Client issues authenticated requests against one platform's base URL.
type Client struct {
	platform string
	base     string
	http     *http.Client
	auth     Authenticator
	log      zerolog.Logger
}

// New builds a Client for the named platform. base must not end with a slash.
func New(platform, base string, auth Authenticator, log zerolog.Logger) *Client {
	return &Client{
		platform: platform,
		base:     strings.TrimRight(base, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		auth:     auth,
		log:      log.With().Str("platform", platform).Logger(),
	}
}

// GetJSON issues a GET and decodes the JSON response into out (may be nil).
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// PostJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.platform, err)
		}
		buf = bytes.NewReader(raw)
	}
	return c.do(ctx, http.MethodPost, path, nil, buf, "application/json", out)
}

// PostForm issues a POST with a form-encoded body and decodes the response.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", out)
}

// Delete issues a DELETE. The caller decides whether a 404 is an error.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, "", nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := path
	if !strings.HasPrefix(path, "http") {
		u = c.base + path
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.platform, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		if err := c.auth(ctx, req); err != nil {
			return &domain.UpstreamError{Platform: c.platform, Message: err.Error()}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.UpstreamError{Platform: c.platform, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.UpstreamError{Platform: c.platform, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := upstreamMessage(raw)
		c.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Str("message", msg).Msg("upstream error")
		return &domain.UpstreamError{Platform: c.platform, StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.UpstreamError{Platform: c.platform, StatusCode: resp.StatusCode,
				Message: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	return domain.UpstreamStatus(err) == http.StatusNotFound
}

// upstreamMessage pulls a human-readable message out of an error body; the
// platforms disagree on the field name.
func upstreamMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		switch {
		case envelope.Message != "":
			return envelope.Message
		case envelope.Error != "":
			return envelope.Error
		case envelope.Detail != "":
			return envelope.Detail
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	if msg == "" {
		msg = "request failed"
	}
	return msg
}
