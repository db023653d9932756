// Package services holds the stateful client services: the session manager,
// the optimistic resource stores, the predefined selection and the daily
// quote.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/quotekeeper/internal/client/auth"
	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
)

var (
	ErrAlreadyInitialized = errors.New("session manager already initialized")
	ErrClosed             = errors.New("session manager closed")
)

// SessionManager is the single source of truth for who is signed in.
//
// The state starts as Loading. Initialize subscribes to the auth channel and
// fetches the current session in the background; whichever of the two
// answers first resolves Loading, and from the first subscription event on
// only events change the state.
type SessionManager struct {
	channel auth.Channel
	log     logging.Logger

	// applyMu keeps "apply state, notify subscribers" atomic so subscribers
	// see states in delivery order.
	applyMu sync.Mutex

	mu        sync.Mutex
	state     models.SessionState
	started   bool
	closed    bool
	resolved  bool
	fromEvent bool
	sub       auth.Subscription

	ready     chan struct{}
	closeOnce sync.Once
	subs      fanout[models.SessionState]
}

func NewSessionManager(channel auth.Channel, log logging.Logger) *SessionManager {
	if log == nil {
		log = logging.Nop()
	}
	return &SessionManager{
		channel: channel,
		log:     log.With("component", "session"),
		state:   models.SessionState{Loading: true},
		ready:   make(chan struct{}),
	}
}

// Initialize starts tracking the session. It returns once the subscription
// is in place; the initial fetch completes in the background (see Ready).
func (m *SessionManager) Initialize(ctx context.Context) (err error) {
	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.started:
		m.mu.Unlock()
		return ErrAlreadyInitialized
	}
	m.started = true
	m.mu.Unlock()

	sub := m.channel.OnSessionChange(m.onEvent)
	defer func() {
		if err != nil {
			sub.Close()
		}
	}()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.sub = sub
	m.mu.Unlock()

	go m.fetchInitial(ctx)
	return nil
}

func (m *SessionManager) fetchInitial(ctx context.Context) {
	s, err := m.channel.GetSession(ctx)
	if err != nil {
		m.log.Warn(ctx, "initial session fetch failed, continuing signed out", "error", err)
		s = nil
	}
	m.apply(ctx, s, false)
}

func (m *SessionManager) onEvent(s *models.Session) {
	m.apply(context.Background(), s, true)
}

func (m *SessionManager) apply(ctx context.Context, s *models.Session, event bool) {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	m.mu.Lock()
	if m.closed || (!event && m.fromEvent) {
		m.mu.Unlock()
		return
	}
	if event {
		m.fromEvent = true
	}
	var sess *models.Session
	if s != nil {
		cp := *s
		sess = &cp
	}
	m.state = models.SessionState{Session: sess}
	first := !m.resolved
	m.resolved = true
	state := m.snapshotLocked()
	m.mu.Unlock()

	if first {
		source := "fetch"
		if event {
			source = "event"
		}
		m.log.Debug(ctx, "session resolved", "source", source, "user_id", state.UserID())
		close(m.ready)
	}
	m.subs.emit(state)
}

// snapshotLocked copies the state; m.mu must be held.
func (m *SessionManager) snapshotLocked() models.SessionState {
	st := m.state
	if st.Session != nil {
		cp := *st.Session
		st.Session = &cp
	}
	return st
}

// Current returns the latest state without a network call.
func (m *SessionManager) Current() models.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Ready is closed once Loading has been resolved.
func (m *SessionManager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until Loading is resolved or ctx is done.
func (m *SessionManager) WaitReady(ctx context.Context) (models.SessionState, error) {
	select {
	case <-m.ready:
		return m.Current(), nil
	case <-ctx.Done():
		return m.Current(), ctx.Err()
	}
}

// Subscribe registers fn for every applied state, in application order. fn
// runs on the goroutine that delivered the change and must not block.
func (m *SessionManager) Subscribe(fn func(models.SessionState)) Subscription {
	return m.subs.add(fn)
}

// SignOut asks the auth channel to end the session. The state is not
// cleared here: the signed-out state arrives through the subscription, and
// on failure the user stays signed in.
func (m *SessionManager) SignOut(ctx context.Context) error {
	return m.channel.SignOut(ctx)
}

// Close releases the auth subscription. Safe to call more than once.
func (m *SessionManager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		sub := m.sub
		m.sub = nil
		m.mu.Unlock()

		if sub != nil {
			sub.Close()
		}
	})
}
