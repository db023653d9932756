package auth

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
)

// Listener receives the new session (nil when signed out) on every
// sign-in, sign-out and token refresh.
type Listener func(*models.Session)

// Subscription is a handle to a registered Listener. Close releases it;
// calling Close more than once is a no-op.
type Subscription interface {
	Close()
}

// Channel is the auth capability the session layer depends on.
type Channel interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*models.Session, error)

	// OnSessionChange registers l for every subsequent session change.
	// Listeners are called one at a time in change order and must not call
	// back into the Channel.
	OnSessionChange(l Listener) Subscription

	// SignOut ends the session. The resulting nil session is delivered to
	// listeners only on success.
	SignOut(ctx context.Context) error
}

// PasswordSignIn is implemented by channels that accept email/password
// credentials.
type PasswordSignIn interface {
	SignInWithPassword(ctx context.Context, email string, password []byte) (*models.Session, error)
	SignUp(ctx context.Context, email string, password []byte) (*models.Session, error)
}

// listeners is a registry of Listeners with ordered fan-out.
type listeners struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]Listener
	order  []uint64
}

func (ls *listeners) add(l Listener) Subscription {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.byID == nil {
		ls.byID = make(map[uint64]Listener)
	}
	ls.nextID++
	id := ls.nextID
	ls.byID[id] = l
	ls.order = append(ls.order, id)

	return &subscription{release: func() { ls.remove(id) }}
}

func (ls *listeners) remove(id uint64) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	delete(ls.byID, id)
	for i, v := range ls.order {
		if v == id {
			ls.order = append(ls.order[:i], ls.order[i+1:]...)
			break
		}
	}
}

func (ls *listeners) snapshot() []Listener {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	out := make([]Listener, 0, len(ls.order))
	for _, id := range ls.order {
		out = append(out, ls.byID[id])
	}
	return out
}

type subscription struct {
	once    sync.Once
	release func()
}

func (s *subscription) Close() {
	s.once.Do(s.release)
}

// NewSubscription wraps release so that it runs at most once.
func NewSubscription(release func()) Subscription {
	return &subscription{release: release}
}
