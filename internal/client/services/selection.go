package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
)

var ErrUnknownOption = errors.New("unknown interest option")

// ProfileBackend reads and replaces the profile's predefined selection.
type ProfileBackend interface {
	GetProfile(ctx context.Context) (models.Profile, error)
	UpdateProfile(ctx context.Context, interests []string) (models.Profile, error)
}

// Selection is the predefined interest selection stored on the profile.
// Toggles are local; Save replaces the whole set on the backend in one
// request.
type Selection struct {
	backend ProfileBackend
	options []string
	log     logging.Logger

	mu       sync.Mutex
	epoch    uint64
	selected map[string]bool
	saved    map[string]bool
	// extra holds stored tags outside the option list. They are sent back
	// unchanged on Save.
	extra []string

	changes fanout[struct{}]
}

func NewSelection(backend ProfileBackend, log logging.Logger) *Selection {
	if log == nil {
		log = logging.Nop()
	}
	return &Selection{
		backend:  backend,
		options:  slices.Clone(models.InterestOptions),
		log:      log.With("component", "selection"),
		selected: map[string]bool{},
		saved:    map[string]bool{},
	}
}

func (s *Selection) Options() []string {
	return slices.Clone(s.options)
}

func (s *Selection) normalize(tag string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if !slices.Contains(s.options, t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownOption, tag)
	}
	return t, nil
}

// Toggle flips tag and reports whether it is now selected.
func (s *Selection) Toggle(tag string) (bool, error) {
	t, err := s.normalize(tag)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	on := !s.selected[t]
	if on {
		s.selected[t] = true
	} else {
		delete(s.selected, t)
	}
	s.mu.Unlock()
	s.notify()
	return on, nil
}

// Selected returns the selected tags in option order.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderedLocked(s.selected)
}

func (s *Selection) orderedLocked(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, o := range s.options {
		if set[o] {
			out = append(out, o)
		}
	}
	return out
}

// Dirty reports whether the local selection differs from the last loaded or
// saved one.
func (s *Selection) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !maps.Equal(s.selected, s.saved)
}

// SelectionTicket ties a Fetch to the Begin call that issued it.
type SelectionTicket struct {
	epoch uint64
}

// Load replaces the local selection with the profile's.
func (s *Selection) Load(ctx context.Context) error {
	return s.Fetch(ctx, s.Begin())
}

// Begin issues a ticket that Reset voids.
func (s *Selection) Begin() SelectionTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectionTicket{epoch: s.epoch}
}

// Fetch reads the profile and applies it unless the ticket was voided.
func (s *Selection) Fetch(ctx context.Context, t SelectionTicket) error {
	p, err := s.backend.GetProfile(ctx)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}

	s.mu.Lock()
	if t.epoch != s.epoch {
		s.mu.Unlock()
		return nil
	}
	s.applyLocked(ctx, p.Interests)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Save sends the whole selection. On failure nothing changes locally and
// the selection stays dirty.
func (s *Selection) Save(ctx context.Context) error {
	s.mu.Lock()
	epoch := s.epoch
	tags := append(s.orderedLocked(s.selected), s.extra...)
	s.mu.Unlock()

	p, err := s.backend.UpdateProfile(ctx, tags)
	if err != nil {
		return fmt.Errorf("save selection: %w", err)
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return nil
	}
	s.applyLocked(ctx, p.Interests)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Selection) applyLocked(ctx context.Context, interests []string) {
	s.selected = map[string]bool{}
	s.saved = map[string]bool{}
	s.extra = nil
	for _, tag := range interests {
		t, err := s.normalize(tag)
		if err != nil {
			s.log.Debug(ctx, "keeping tag outside the option list", "tag", tag)
			s.extra = append(s.extra, tag)
			continue
		}
		s.selected[t] = true
		s.saved[t] = true
	}
}

// Reset clears the selection; in-flight Load and Save results are dropped.
func (s *Selection) Reset() {
	s.mu.Lock()
	s.epoch++
	s.selected = map[string]bool{}
	s.saved = map[string]bool{}
	s.extra = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Selection) OnChange(fn func()) Subscription {
	return s.changes.add(func(struct{}) { fn() })
}

func (s *Selection) notify() {
	s.changes.emit(struct{}{})
}
