package services

import (
	"sync"

	"github.com/dmitrijs2005/quotekeeper/internal/client/auth"
)

// Subscription is the handle returned by Subscribe and OnChange.
type Subscription = auth.Subscription

// fanout is an ordered set of callbacks. Callbacks run in registration
// order on the emitting goroutine.
type fanout[T any] struct {
	mu    sync.Mutex
	next  uint64
	subs  map[uint64]func(T)
	order []uint64
}

func (f *fanout[T]) add(fn func(T)) Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs == nil {
		f.subs = make(map[uint64]func(T))
	}
	f.next++
	id := f.next
	f.subs[id] = fn
	f.order = append(f.order, id)

	return auth.NewSubscription(func() { f.remove(id) })
}

func (f *fanout[T]) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.subs, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			return
		}
	}
}

func (f *fanout[T]) emit(v T) {
	f.mu.Lock()
	fns := make([]func(T), 0, len(f.order))
	for _, id := range f.order {
		fns = append(fns, f.subs[id])
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
