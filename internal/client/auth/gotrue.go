package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/client/client"
	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
)

const (
	defaultRefreshMargin = time.Minute
	minRefreshDelay      = time.Second
	autoRefreshTimeout   = 30 * time.Second
)

// GoTrueChannel is a Channel backed by a GoTrue-compatible auth service.
type GoTrueChannel struct {
	api           *client.HTTPClient
	log           logging.Logger
	now           func() time.Time
	refreshMargin time.Duration

	// emitMu serializes "replace session, then notify" so listeners observe
	// changes in the order they happened.
	emitMu sync.Mutex

	mu      sync.Mutex
	session *models.Session
	timer   *time.Timer
	closed  bool

	listeners listeners
}

type goTrueOptions struct {
	httpClient    *http.Client
	log           logging.Logger
	now           func() time.Time
	refreshMargin time.Duration
}

type GoTrueOption func(*goTrueOptions)

func WithHTTPClient(h *http.Client) GoTrueOption {
	return func(o *goTrueOptions) { o.httpClient = h }
}

func WithLogger(l logging.Logger) GoTrueOption {
	return func(o *goTrueOptions) { o.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) GoTrueOption {
	return func(o *goTrueOptions) { o.now = now }
}

// WithRefreshMargin sets how long before expiry the token is renewed.
func WithRefreshMargin(d time.Duration) GoTrueOption {
	return func(o *goTrueOptions) { o.refreshMargin = d }
}

// NewGoTrueChannel returns a channel for the auth service at baseURL
// (e.g. https://project.supabase.co/auth/v1) using apiKey as the apikey
// header.
func NewGoTrueChannel(baseURL, apiKey string, opts ...GoTrueOption) *GoTrueChannel {
	o := goTrueOptions{
		httpClient:    http.DefaultClient,
		log:           logging.Nop(),
		now:           time.Now,
		refreshMargin: defaultRefreshMargin,
	}
	for _, fn := range opts {
		fn(&o)
	}

	ch := &GoTrueChannel{
		log:           o.log,
		now:           o.now,
		refreshMargin: o.refreshMargin,
	}
	// The channel is its own session source, so /logout carries the bearer
	// of the session being ended.
	ch.api = client.New(baseURL, ch,
		client.WithAPIKey(apiKey),
		client.WithHTTPClient(o.httpClient),
		client.WithLogger(o.log),
	)
	return ch
}

// Current returns the session held by the channel.
func (c *GoTrueChannel) Current() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.SessionState{Session: copySession(c.session)}
}

// GetSession returns the current session. An expired session is refreshed
// first; an expired session that cannot be refreshed is dropped.
func (c *GoTrueChannel) GetSession(ctx context.Context) (*models.Session, error) {
	s := c.Current().Session
	if s == nil || !s.Expired(c.now()) {
		return s, nil
	}
	if s.RefreshToken == "" {
		c.change(nil)
		return nil, nil
	}
	return c.Refresh(ctx)
}

func (c *GoTrueChannel) OnSessionChange(l Listener) Subscription {
	return c.listeners.add(l)
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	LastSignInAt time.Time `json:"last_sign_in_at"`
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         *tokenUser `json:"user"`
}

// SignInWithPassword exchanges email and password for a session.
func (c *GoTrueChannel) SignInWithPassword(ctx context.Context, email string, password []byte) (*models.Session, error) {
	var tr tokenResponse
	grant := passwordGrant{Email: email, Password: string(password)}
	q := url.Values{"grant_type": {"password"}}
	if err := c.api.Do(ctx, http.MethodPost, "/token", grant, &tr, client.WithQuery(q), client.Anonymous()); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s, err := c.sessionFromToken(tr)
	if err != nil {
		return nil, err
	}
	c.change(s)
	return copySession(s), nil
}

// SignUp registers a new account. When the service requires email
// confirmation no session is returned and the state is unchanged.
func (c *GoTrueChannel) SignUp(ctx context.Context, email string, password []byte) (*models.Session, error) {
	var tr tokenResponse
	grant := passwordGrant{Email: email, Password: string(password)}
	if err := c.api.Do(ctx, http.MethodPost, "/signup", grant, &tr, client.Anonymous()); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, nil
	}

	s, err := c.sessionFromToken(tr)
	if err != nil {
		return nil, err
	}
	c.change(s)
	return copySession(s), nil
}

// Refresh renews the access token with the refresh token. A refresh token
// rejected by the service ends the session.
func (c *GoTrueChannel) Refresh(ctx context.Context) (*models.Session, error) {
	cur := c.Current().Session
	if cur == nil || cur.RefreshToken == "" {
		return nil, client.ErrUnauthenticated
	}

	var tr tokenResponse
	q := url.Values{"grant_type": {"refresh_token"}}
	err := c.api.Do(ctx, http.MethodPost, "/token", refreshGrant{RefreshToken: cur.RefreshToken}, &tr, client.WithQuery(q), client.Anonymous())
	if err != nil {
		var re *client.RemoteError
		if errors.As(err, &re) && re.Status >= 400 && re.Status < 500 {
			if c.changeIf(holds(cur.RefreshToken), nil) {
				c.log.Warn(ctx, "refresh token rejected, signed out", "status", re.Status, "error", re.Message)
			}
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	s, err := c.sessionFromToken(tr)
	if err != nil {
		return nil, err
	}
	if !c.changeIf(holds(cur.RefreshToken), s) {
		// Signed in or out while the refresh was in flight.
		return c.Current().Session, nil
	}
	return copySession(s), nil
}

// holds matches a current session still carrying refreshToken.
func holds(refreshToken string) func(*models.Session) bool {
	return func(cur *models.Session) bool {
		return cur != nil && cur.RefreshToken == refreshToken
	}
}

// SignOut revokes the session on the server. A 401 or 404 means the
// session is already gone there and counts as success.
func (c *GoTrueChannel) SignOut(ctx context.Context) error {
	if c.Current().Session == nil {
		return nil
	}

	err := c.api.Do(ctx, http.MethodPost, "/logout", nil, nil)
	if err != nil {
		var re *client.RemoteError
		if !errors.As(err, &re) || (re.Status != http.StatusUnauthorized && re.Status != http.StatusNotFound) {
			return fmt.Errorf("sign out: %w", err)
		}
	}

	c.change(nil)
	return nil
}

// Close stops the background token refresh. Listeners stay registered.
func (c *GoTrueChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// change replaces the session and notifies listeners.
func (c *GoTrueChannel) change(s *models.Session) {
	c.changeIf(nil, s)
}

// changeIf is change guarded by match, which sees the current session.
// It reports whether the session was replaced.
func (c *GoTrueChannel) changeIf(match func(*models.Session) bool, s *models.Session) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if match != nil && !match(c.session) {
		c.mu.Unlock()
		return false
	}
	c.session = copySession(s)
	c.scheduleRefreshLocked()
	c.mu.Unlock()

	for _, l := range c.listeners.snapshot() {
		l(copySession(s))
	}
	return true
}

func (c *GoTrueChannel) scheduleRefreshLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	s := c.session
	if c.closed || s == nil || s.RefreshToken == "" || s.ExpiresAt.IsZero() {
		return
	}

	delay := s.ExpiresAt.Sub(c.now()) - c.refreshMargin
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}
	c.timer = time.AfterFunc(delay, c.autoRefresh)
}

func (c *GoTrueChannel) autoRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), autoRefreshTimeout)
	defer cancel()

	if _, err := c.Refresh(ctx); err != nil {
		c.log.Warn(ctx, "automatic token refresh failed", "error", err)
	}
}

func (c *GoTrueChannel) sessionFromToken(tr tokenResponse) (*models.Session, error) {
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", client.ErrMalformedResponse)
	}

	s := &models.Session{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}
	if tr.User != nil {
		s.User = models.User{ID: tr.User.ID, Email: tr.User.Email, LastSignInAt: tr.User.LastSignInAt}
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	if s.User.ID == "" || s.User.Email == "" || s.ExpiresAt.IsZero() || s.User.LastSignInAt.IsZero() {
		fillFromClaims(s)
	}

	if s.User.ID == "" {
		return nil, fmt.Errorf("%w: session has no user id", client.ErrMalformedResponse)
	}
	return s, nil
}

// fillFromClaims completes missing session fields from the access token.
// Tokens that are not JWTs are left alone.
func fillFromClaims(s *models.Session) {
	claims, err := parseClaims(s.AccessToken)
	if err != nil {
		return
	}
	if s.User.ID == "" {
		s.User.ID = claims.Subject
	}
	if s.User.Email == "" {
		s.User.Email = claims.Email
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = claims.expiresAt()
	}
	if s.User.LastSignInAt.IsZero() {
		s.User.LastSignInAt = claims.issuedAt()
	}
}

func copySession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
