package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/quotekeeper/internal/client/client"
	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
	"github.com/google/uuid"
)

var (
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrNotFound       = errors.New("entry not found")
	// ErrCancelled is returned by Add when the pending entry was removed
	// before the backend confirmed it.
	ErrCancelled = errors.New("entry removed before it was saved")
)

// ResourceBackend is the remote collection a Store mirrors.
type ResourceBackend[R models.Record] interface {
	List(ctx context.Context, userID string) ([]R, error)
	Create(ctx context.Context, userID string, payload R) (R, error)
	Delete(ctx context.Context, id string) error
}

type StoreState int

const (
	StoreEmpty StoreState = iota
	StoreLoading
	StoreLoaded
)

func (s StoreState) String() string {
	switch s {
	case StoreEmpty:
		return "empty"
	case StoreLoading:
		return "loading"
	case StoreLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("StoreState(%d)", int(s))
	}
}

// Entry is one slot of a store list. Key is assigned locally and stays the
// same when a pending entry is confirmed.
type Entry[R models.Record] struct {
	Key     uuid.UUID
	Record  R
	Pending bool
}

// Store keeps the current user's records of one kind, newest first, and
// applies adds and removes optimistically.
//
// Every completion is matched to its entry by key. Completions of loads
// superseded by a newer Load, and of any operation started before the owner
// changed, are dropped.
type Store[R models.Record] struct {
	name    string
	backend ResourceBackend[R]
	dedup   func(R) string
	log     logging.Logger

	mu         sync.Mutex
	state      StoreState
	owner      string
	epoch      uint64
	generation uint64
	entries    []Entry[R]
	// cancelled holds keys of pending entries removed before their create
	// completed.
	cancelled map[uuid.UUID]struct{}
	// deleting counts in-flight deletes per record id. Loads skip those
	// records.
	deleting map[string]int

	changes fanout[struct{}]
}

// NewStore returns an empty store. dedup, when not nil, maps a record to the
// key used to reject duplicates locally.
func NewStore[R models.Record](name string, backend ResourceBackend[R], dedup func(R) string, log logging.Logger) *Store[R] {
	if log == nil {
		log = logging.Nop()
	}
	return &Store[R]{
		name:      name,
		backend:   backend,
		dedup:     dedup,
		log:       log.With("store", name),
		cancelled: make(map[uuid.UUID]struct{}),
		deleting:  make(map[string]int),
	}
}

func NewQuoteStore(backend ResourceBackend[models.Quote], log logging.Logger) *Store[models.Quote] {
	return NewStore(string(models.ResourceQuotes), backend, nil, log)
}

// NewInterestStore returns a store rejecting interests whose trimmed,
// case-folded name is already present.
func NewInterestStore(backend ResourceBackend[models.Interest], log logging.Logger) *Store[models.Interest] {
	return NewStore(string(models.ResourceInterests), backend, models.InterestKey, log)
}

func (s *Store[R]) Name() string { return s.name }

// LoadTicket ties a Fetch to the Begin call that issued it.
type LoadTicket struct {
	user string
	gen  uint64
}

// Load replaces the list with userID's records. It is Begin followed by
// Fetch.
func (s *Store[R]) Load(ctx context.Context, userID string) error {
	return s.Fetch(ctx, s.Begin(userID))
}

// Begin hands the store to userID and marks it Loading. Only the Fetch of
// the most recent ticket is applied; Reset and later Begin calls void
// earlier tickets.
func (s *Store[R]) Begin(userID string) LoadTicket {
	s.mu.Lock()
	if userID != s.owner {
		s.owner = userID
		s.epoch++
		s.entries = nil
	}
	s.generation++
	t := LoadTicket{user: userID, gen: s.generation}
	s.state = StoreLoading
	s.mu.Unlock()
	s.notify()
	return t
}

// Fetch lists the ticket owner's records and applies them unless the ticket
// was voided meanwhile. Pending entries stay at the head of the list, and
// records with a delete in flight are left out.
//
// A failed fetch leaves the store Loaded with only its pending entries and
// returns the error.
func (s *Store[R]) Fetch(ctx context.Context, t LoadTicket) error {
	records, err := s.backend.List(ctx, t.user)

	s.mu.Lock()
	if t.gen != s.generation {
		s.mu.Unlock()
		s.log.Debug(ctx, "dropped superseded load", "user_id", t.user)
		return nil
	}
	pending := s.pendingLocked()
	if err != nil {
		s.entries = pending
		s.state = StoreLoaded
		s.mu.Unlock()
		s.notify()

		s.log.Warn(ctx, "load failed", "user_id", t.user, "error", err)
		return fmt.Errorf("load %s: %w", s.name, err)
	}

	sortNewestFirst(records)
	entries := make([]Entry[R], 0, len(pending)+len(records))
	entries = append(entries, pending...)
	for _, r := range records {
		if s.deleting[r.RecordID()] > 0 {
			continue
		}
		entries = append(entries, Entry[R]{Key: uuid.New(), Record: r})
	}
	s.entries = entries
	s.state = StoreLoaded
	s.mu.Unlock()
	s.notify()

	s.log.Debug(ctx, "loaded", "user_id", t.user, "count", len(records))
	return nil
}

func (s *Store[R]) pendingLocked() []Entry[R] {
	var out []Entry[R]
	for _, e := range s.entries {
		if e.Pending {
			out = append(out, e)
		}
	}
	return out
}

// Add prepends payload as a pending entry and creates it on the backend. On
// success the pending entry is replaced in place by the stored record; on
// failure it is removed and the error returned.
func (s *Store[R]) Add(ctx context.Context, payload R) (R, error) {
	var zero R
	if strings.TrimSpace(payload.Payload()) == "" {
		return zero, models.ErrEmptyPayload
	}

	s.mu.Lock()
	if s.owner == "" {
		s.mu.Unlock()
		return zero, client.ErrUnauthenticated
	}
	if s.dedup != nil {
		k := s.dedup(payload)
		for _, e := range s.entries {
			if s.dedup(e.Record) == k {
				s.mu.Unlock()
				return zero, fmt.Errorf("%w: %q", ErrDuplicateEntry, strings.TrimSpace(payload.Payload()))
			}
		}
	}
	key := uuid.New()
	s.entries = slices.Insert(s.entries, 0, Entry[R]{Key: key, Record: payload, Pending: true})
	owner, epoch := s.owner, s.epoch
	s.mu.Unlock()
	s.notify()

	created, err := s.backend.Create(ctx, owner, payload)

	s.mu.Lock()
	if _, ok := s.cancelled[key]; ok {
		delete(s.cancelled, key)
		if err != nil {
			s.mu.Unlock()
			return zero, ErrCancelled
		}
		// A load may have listed the record before the delete below.
		s.dropRecordLocked(created.RecordID(), uuid.Nil)
		s.deleting[created.RecordID()]++
		s.mu.Unlock()
		s.notify()

		s.compensate(ctx, created)
		return zero, ErrCancelled
	}
	if epoch != s.epoch {
		s.mu.Unlock()
		s.log.Debug(ctx, "dropped add completion for previous owner", "user_id", owner)
		if err != nil {
			return zero, fmt.Errorf("add %s: %w", s.name, err)
		}
		return created, nil
	}

	idx := s.indexLocked(key)
	if err != nil {
		if idx >= 0 {
			s.entries = slices.Delete(s.entries, idx, idx+1)
		}
		s.mu.Unlock()
		s.notify()
		return zero, fmt.Errorf("add %s: %w", s.name, err)
	}
	if idx >= 0 {
		s.entries[idx] = Entry[R]{Key: key, Record: created}
	}
	// A load that ran while the create was in flight may already list it.
	s.dropRecordLocked(created.RecordID(), key)
	s.mu.Unlock()
	s.notify()
	return created, nil
}

// dropRecordLocked removes confirmed entries holding record id, except the
// entry under keep.
func (s *Store[R]) dropRecordLocked(id string, keep uuid.UUID) {
	s.entries = slices.DeleteFunc(s.entries, func(e Entry[R]) bool {
		return e.Key != keep && !e.Pending && e.Record.RecordID() == id
	})
}

// compensate deletes a record whose pending entry was removed while its
// create was in flight.
func (s *Store[R]) compensate(ctx context.Context, r R) {
	err := s.backend.Delete(ctx, r.RecordID())
	s.doneDeleting(r.RecordID())
	if err != nil {
		s.log.Warn(ctx, "compensating delete failed", "id", r.RecordID(), "error", err)
	}
}

// Remove drops the entry with the given key and deletes it on the backend.
// On failure the entry is put back at its previous position. Removing a
// pending entry only cancels it locally.
func (s *Store[R]) Remove(ctx context.Context, key uuid.UUID) error {
	s.mu.Lock()
	idx := s.indexLocked(key)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	e := s.entries[idx]
	s.entries = slices.Delete(s.entries, idx, idx+1)
	if e.Pending {
		s.cancelled[key] = struct{}{}
		s.mu.Unlock()
		s.notify()
		return nil
	}
	epoch := s.epoch
	id := e.Record.RecordID()
	s.deleting[id]++
	s.mu.Unlock()
	s.notify()

	err := s.backend.Delete(ctx, id)
	s.doneDeleting(id)
	if err == nil {
		return nil
	}

	s.mu.Lock()
	if epoch == s.epoch && s.indexLocked(key) < 0 {
		s.entries = slices.Insert(s.entries, min(idx, len(s.entries)), e)
	}
	s.mu.Unlock()
	s.notify()
	return fmt.Errorf("remove %s: %w", s.name, err)
}

func (s *Store[R]) doneDeleting(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleting[id]--; s.deleting[id] <= 0 {
		delete(s.deleting, id)
	}
}

// RemoveByID removes the confirmed entry holding the record with server id.
func (s *Store[R]) RemoveByID(ctx context.Context, id string) error {
	s.mu.Lock()
	var key uuid.UUID
	found := false
	for _, e := range s.entries {
		if !e.Pending && e.Record.RecordID() == id {
			key, found = e.Key, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	return s.Remove(ctx, key)
}

func (s *Store[R]) indexLocked(key uuid.UUID) int {
	return slices.IndexFunc(s.entries, func(e Entry[R]) bool { return e.Key == key })
}

// Reset empties the store and forgets its owner. In-flight completions are
// dropped.
func (s *Store[R]) Reset() {
	s.mu.Lock()
	s.state = StoreEmpty
	s.owner = ""
	s.epoch++
	s.generation++
	s.entries = nil
	s.mu.Unlock()
	s.notify()
}

// Entries returns a copy of the list, pending entries included.
func (s *Store[R]) Entries() []Entry[R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Records returns the records of the list, pending ones included.
func (s *Store[R]) Records() []R {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]R, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Record)
	}
	return out
}

func (s *Store[R]) State() StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Owner returns the user whose records the store holds, or "".
func (s *Store[R]) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// OnChange registers fn to run after every change of the list or state.
func (s *Store[R]) OnChange(fn func()) Subscription {
	return s.changes.add(func(struct{}) { fn() })
}

func (s *Store[R]) notify() {
	s.changes.emit(struct{}{})
}

func sortNewestFirst[R models.Record](records []R) {
	slices.SortStableFunc(records, func(a, b R) int {
		return b.Created().Compare(a.Created())
	})
}
