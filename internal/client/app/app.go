// Package app assembles the client: session manager, backend client,
// stores, selection and daily quote, and keeps the stores in step with the
// signed-in user.
package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/client/auth"
	"github.com/dmitrijs2005/quotekeeper/internal/client/client"
	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/client/services"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
	"golang.org/x/sync/errgroup"
)

const defaultReloadTimeout = 30 * time.Second

type Options struct {
	// APIBaseURL is the origin of the resource backend.
	APIBaseURL string
	// APIKey is sent as the apikey header when not empty.
	APIKey string

	HTTPClient *http.Client
	Logger     logging.Logger

	// ReloadTimeout bounds background reloads after a session change.
	ReloadTimeout time.Duration
	// QuoteSchedule overrides the daily quote refresh schedule.
	QuoteSchedule string
}

// App is the application context. It is created once, started with Start
// and torn down with Close.
type App struct {
	Sessions   *services.SessionManager
	API        *client.HTTPClient
	Quotes     *services.Store[models.Quote]
	Interests  *services.Store[models.Interest]
	Selection  *services.Selection
	DailyQuote *services.DailyQuoteService

	log           logging.Logger
	reloadTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	user      string
	sub       services.Subscription
	closed    bool
	closeOnce sync.Once
}

// New wires the components around channel. Nothing runs until Start.
func New(channel auth.Channel, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	reloadTimeout := opts.ReloadTimeout
	if reloadTimeout <= 0 {
		reloadTimeout = defaultReloadTimeout
	}

	sessions := services.NewSessionManager(channel, log)
	api := client.New(opts.APIBaseURL, sessions,
		client.WithHTTPClient(httpClient),
		client.WithAPIKey(opts.APIKey),
		client.WithLogger(log.With("component", "api")),
	)

	var quoteOpts []services.DailyQuoteOption
	if opts.QuoteSchedule != "" {
		quoteOpts = append(quoteOpts, services.WithSchedule(opts.QuoteSchedule))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Sessions:      sessions,
		API:           api,
		Quotes:        services.NewQuoteStore(client.NewQuotesAPI(api), log),
		Interests:     services.NewInterestStore(client.NewInterestsAPI(api), log),
		Selection:     services.NewSelection(api, log),
		DailyQuote:    services.NewDailyQuoteService(api, log, quoteOpts...),
		log:           log.With("component", "app"),
		reloadTimeout: reloadTimeout,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins tracking the session and schedules daily quote refreshes.
// The first daily quote is fetched in the background.
func (a *App) Start(ctx context.Context) error {
	sub := a.Sessions.Subscribe(a.onSession)
	if err := a.Sessions.Initialize(ctx); err != nil {
		sub.Close()
		return err
	}

	a.mu.Lock()
	a.sub = sub
	a.mu.Unlock()

	if err := a.DailyQuote.Start(); err != nil {
		return err
	}
	a.spawn(a.refreshQuote)
	return nil
}

// onSession runs on the session manager's delivery path and must not block.
// Stores are reset and handed to the new user before it returns, so loads
// run in delivery order no matter when their goroutines get scheduled.
func (a *App) onSession(st models.SessionState) {
	user := st.UserID()

	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.user
	// A token refresh for the same user changes nothing here.
	if user == prev {
		return
	}
	a.user = user

	a.log.Info(a.ctx, "session changed", "user_id", user, "previous_user_id", prev)
	a.Quotes.Reset()
	a.Interests.Reset()
	a.Selection.Reset()

	a.spawnLocked(a.refreshQuote)
	if user != "" {
		load := a.beginLoadLocked(user)
		a.spawnLocked(func(ctx context.Context) {
			if err := load(ctx); err != nil {
				a.log.Warn(ctx, "reload after sign-in failed", "user_id", user, "error", err)
			}
		})
	}
}

// Reload fetches quotes, interests and the selection of the signed-in user.
func (a *App) Reload(ctx context.Context) error {
	a.mu.Lock()
	user := a.user
	if user == "" {
		a.mu.Unlock()
		return client.ErrUnauthenticated
	}
	load := a.beginLoadLocked(user)
	a.mu.Unlock()

	return load(ctx)
}

// beginLoadLocked claims the stores for user and returns the fetch. A later
// session change voids it.
func (a *App) beginLoadLocked(user string) func(ctx context.Context) error {
	quotes := a.Quotes.Begin(user)
	interests := a.Interests.Begin(user)
	selection := a.Selection.Begin()

	return func(ctx context.Context) error {
		// Plain group: one failed load must not cancel the others.
		var g errgroup.Group
		g.Go(func() error { return a.Quotes.Fetch(ctx, quotes) })
		g.Go(func() error { return a.Interests.Fetch(ctx, interests) })
		g.Go(func() error { return a.Selection.Fetch(ctx, selection) })
		return g.Wait()
	}
}

func (a *App) refreshQuote(ctx context.Context) {
	if _, err := a.DailyQuote.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "daily quote refresh failed", "error", err)
	}
}

func (a *App) spawn(fn func(ctx context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spawnLocked(fn)
}

func (a *App) spawnLocked(fn func(ctx context.Context)) {
	if a.closed {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(a.ctx, a.reloadTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until background work started so far has finished.
func (a *App) Wait() {
	a.wg.Wait()
}

// Close stops background work and releases every subscription. It is safe
// to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		sub := a.sub
		a.mu.Unlock()

		if sub != nil {
			sub.Close()
		}
		a.Sessions.Close()
		a.DailyQuote.Stop()
		a.cancel()
		a.wg.Wait()
	})
}
