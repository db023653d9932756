package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuotes struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (f *fakeQuotes) DailyQuote(ctx context.Context) (models.DailyQuote, error) {
	n := f.calls.Add(1)
	if f.fail.Load() {
		return models.DailyQuote{}, errors.New("unavailable")
	}
	if n == 1 {
		return models.DailyQuote{Quote: "Waste no more time arguing.", Author: "Marcus Aurelius"}, nil
	}
	return models.DailyQuote{Quote: "Luck is what happens when preparation meets opportunity."}, nil
}

func TestDailyQuote_RefreshCaches(t *testing.T) {
	src := &fakeQuotes{}
	s := NewDailyQuoteService(src, nil)

	_, ok := s.Current()
	assert.False(t, ok)

	q, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Marcus Aurelius", q.Attribution())

	src.fail.Store(true)
	_, err = s.Refresh(context.Background())
	require.Error(t, err)

	cached, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, q, cached, "a failed refresh keeps the cached quote")
}

func TestDailyQuote_Schedule(t *testing.T) {
	src := &fakeQuotes{}
	s := NewDailyQuoteService(src, nil, WithSchedule("@every 1s"), WithRefreshTimeout(time.Second))

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	_, ok := s.Current()
	assert.True(t, ok)
}

func TestDailyQuote_BadSchedule(t *testing.T) {
	s := NewDailyQuoteService(&fakeQuotes{}, nil, WithSchedule("not a schedule"))
	require.Error(t, s.Start())
	s.Stop()
}

// sequencedQuotes blocks the first call until release is closed.
type sequencedQuotes struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (f *sequencedQuotes) DailyQuote(ctx context.Context) (models.DailyQuote, error) {
	if f.calls.Add(1) == 1 {
		close(f.started)
		<-f.release
		return models.DailyQuote{Quote: "anonymous"}, nil
	}
	return models.DailyQuote{Quote: "personal"}, nil
}

func TestDailyQuote_SlowerEarlierRefreshIsNotCached(t *testing.T) {
	src := &sequencedQuotes{started: make(chan struct{}), release: make(chan struct{})}
	s := NewDailyQuoteService(src, nil)

	done := make(chan models.DailyQuote, 1)
	go func() {
		q, _ := s.Refresh(context.Background())
		done <- q
	}()
	<-src.started

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	close(src.release)
	assert.Equal(t, "anonymous", (<-done).Quote, "the caller still gets its own response")

	cached, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "personal", cached.Quote)
}
