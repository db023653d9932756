package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
	"github.com/robfig/cron/v3"
)

const (
	defaultQuoteSchedule = "@daily"
	defaultQuoteTimeout  = 10 * time.Second
)

// QuoteSource fetches the quote of the day.
type QuoteSource interface {
	DailyQuote(ctx context.Context) (models.DailyQuote, error)
}

// DailyQuoteService caches the quote of the day and refreshes it on a cron
// schedule.
type DailyQuoteService struct {
	source   QuoteSource
	log      logging.Logger
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	current models.DailyQuote
	ok      bool
	gen     uint64
	cron    *cron.Cron
}

type DailyQuoteOption func(*DailyQuoteService)

// WithSchedule replaces the @daily refresh schedule. Any robfig/cron
// expression (five fields or a descriptor) is accepted.
func WithSchedule(expr string) DailyQuoteOption {
	return func(s *DailyQuoteService) { s.schedule = expr }
}

// WithRefreshTimeout bounds each scheduled refresh.
func WithRefreshTimeout(d time.Duration) DailyQuoteOption {
	return func(s *DailyQuoteService) { s.timeout = d }
}

func NewDailyQuoteService(source QuoteSource, log logging.Logger, opts ...DailyQuoteOption) *DailyQuoteService {
	if log == nil {
		log = logging.Nop()
	}
	s := &DailyQuoteService{
		source:   source,
		log:      log.With("component", "daily_quote"),
		schedule: defaultQuoteSchedule,
		timeout:  defaultQuoteTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Refresh fetches the quote and caches it. On failure the cached quote is
// kept. A response is cached only if no later Refresh started meanwhile.
func (s *DailyQuoteService) Refresh(ctx context.Context) (models.DailyQuote, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	q, err := s.source.DailyQuote(ctx)
	if err != nil {
		return models.DailyQuote{}, fmt.Errorf("fetch daily quote: %w", err)
	}

	s.mu.Lock()
	if gen == s.gen {
		s.current, s.ok = q, true
	} else {
		s.log.Debug(ctx, "dropped superseded daily quote")
	}
	s.mu.Unlock()
	return q, nil
}

// Current returns the cached quote and whether one has been fetched.
func (s *DailyQuoteService) Current() (models.DailyQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.ok
}

// Start schedules periodic refreshes. Calling Start on a started service
// is a no-op.
func (s *DailyQuoteService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.scheduledRefresh); err != nil {
		return fmt.Errorf("schedule daily quote refresh %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop cancels the schedule and waits for a running refresh to finish.
func (s *DailyQuoteService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (s *DailyQuoteService) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "scheduled daily quote refresh failed", "error", err)
		return
	}
	s.log.Debug(ctx, "daily quote refreshed")
}
