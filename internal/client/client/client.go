package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/common"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
	"github.com/google/uuid"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// SessionSource provides the current session state without a network call.
type SessionSource interface {
	Current() models.SessionState
}

// HTTPClient issues JSON requests to the resource backend on behalf of the
// current session.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	sessions SessionSource
	apiKey   string
	log      logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithAPIKey sends key as the apikey header on every request.
func WithAPIKey(key string) Option {
	return func(c *HTTPClient) { c.apiKey = key }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// New returns a client for the backend rooted at baseURL. sessions may be
// nil, in which case every call is unauthenticated.
func New(baseURL string, sessions SessionSource, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     http.DefaultClient,
		sessions: sessions,
		log:      logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type requestOptions struct {
	requireSession bool
	anonymous      bool
	query          url.Values
}

type RequestOption func(*requestOptions)

// RequireSession fails the call with ErrUnauthenticated before any network
// traffic when no session is present.
func RequireSession() RequestOption {
	return func(o *requestOptions) { o.requireSession = true }
}

// Anonymous sends the request without a bearer credential even when a
// session is present.
func Anonymous() RequestOption {
	return func(o *requestOptions) { o.anonymous = true }
}

// WithQuery appends q to the request URL.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

func (c *HTTPClient) currentSession() *models.Session {
	if c.sessions == nil {
		return nil
	}
	return c.sessions.Current().Session
}

// Do sends body (JSON-encoded, may be nil) to path and decodes a success
// response into out (may be nil).
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var ro requestOptions
	for _, o := range opts {
		o(&ro)
	}

	session := c.currentSession()
	if ro.requireSession && session == nil {
		return ErrUnauthenticated
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(ro.query) > 0 {
		target += "?" + ro.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	}
	if session != nil && session.AccessToken != "" && !ro.anonymous {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+session.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransientFetch, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransientFetch, err)
	}

	c.log.Debug(ctx, "backend call", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseRemoteError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrTransientFetch, method, path, err)
	}
	return nil
}

// errorBodyKeys are checked in order for a human-readable message.
var errorBodyKeys = []string{"message", "detail", "error_description", "error", "msg"}

// parseRemoteError never fails: bodies that are not JSON, or carry no
// string message, yield a generic message.
func parseRemoteError(status int, data []byte) *RemoteError {
	e := &RemoteError{Status: status, Message: genericMessage(status)}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return e
	}
	for _, k := range errorBodyKeys {
		if s, ok := body[k].(string); ok && s != "" {
			e.Message = s
			return e
		}
	}
	return e
}

func genericMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed: %s", strings.ToLower(text))
	}
	return fmt.Sprintf("request failed with status %d", status)
}
