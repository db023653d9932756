package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	profile   models.Profile
	getErr    error
	updateErr error

	gets    int
	updates [][]string
	// started and block, when set, let a test hold GetProfile in flight.
	started chan struct{}
	block   chan struct{}
}

func (f *fakeProfiles) GetProfile(ctx context.Context) (models.Profile, error) {
	f.gets++
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.profile, f.getErr
}

func (f *fakeProfiles) UpdateProfile(ctx context.Context, interests []string) (models.Profile, error) {
	f.updates = append(f.updates, append([]string(nil), interests...))
	if f.updateErr != nil {
		return models.Profile{}, f.updateErr
	}
	f.profile.Interests = interests
	return f.profile, nil
}

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection(&fakeProfiles{}, nil)
	assert.Equal(t, []string{"stoic", "sports", "general"}, s.Options())

	on, err := s.Toggle("general")
	require.NoError(t, err)
	assert.True(t, on)

	on, err = s.Toggle(" Stoic ")
	require.NoError(t, err)
	assert.True(t, on)

	assert.Equal(t, []string{"stoic", "general"}, s.Selected(), "option order")
	assert.True(t, s.Dirty())

	on, err = s.Toggle("general")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []string{"stoic"}, s.Selected())

	_, err = s.Toggle("cooking")
	require.ErrorIs(t, err, ErrUnknownOption)
}

func TestSelection_LoadAndSave(t *testing.T) {
	p := &fakeProfiles{profile: models.Profile{ID: "u1", Interests: []string{"sports", "legacy-tag"}}}
	s := NewSelection(p, nil)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, []string{"sports"}, s.Selected())
	assert.False(t, s.Dirty())

	_, err := s.Toggle("stoic")
	require.NoError(t, err)
	assert.True(t, s.Dirty())

	require.NoError(t, s.Save(context.Background()))
	require.Len(t, p.updates, 1)
	assert.Equal(t, []string{"stoic", "sports", "legacy-tag"}, p.updates[0], "whole set, unknown tags kept")
	assert.False(t, s.Dirty())
}

func TestSelection_SaveFailureStaysDirty(t *testing.T) {
	p := &fakeProfiles{updateErr: errors.New("boom")}
	s := NewSelection(p, nil)

	_, err := s.Toggle("sports")
	require.NoError(t, err)

	require.Error(t, s.Save(context.Background()))
	assert.True(t, s.Dirty())
	assert.Equal(t, []string{"sports"}, s.Selected())
}

func TestSelection_EmptySelectionIsSent(t *testing.T) {
	p := &fakeProfiles{profile: models.Profile{Interests: []string{"stoic"}}}
	s := NewSelection(p, nil)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.Toggle("stoic")
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background()))

	require.Len(t, p.updates, 1)
	assert.Empty(t, p.updates[0])
	assert.Empty(t, s.Selected())
}

func TestSelection_ResetDropsInFlightLoad(t *testing.T) {
	p := &fakeProfiles{
		profile: models.Profile{Interests: []string{"stoic"}},
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	s := NewSelection(p, nil)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()
	<-p.started

	s.Reset()
	close(p.block)
	require.NoError(t, <-done)

	assert.Empty(t, s.Selected())
	assert.False(t, s.Dirty())
}

func TestSelection_LoadError(t *testing.T) {
	s := NewSelection(&fakeProfiles{getErr: errors.New("down")}, nil)
	require.Error(t, s.Load(context.Background()))
	assert.Empty(t, s.Selected())
}

func TestSelection_ResetVoidsTicketIssuedBefore(t *testing.T) {
	p := &fakeProfiles{profile: models.Profile{Interests: []string{"sports"}}}
	s := NewSelection(p, nil)

	stale := s.Begin()
	s.Reset()
	require.NoError(t, s.Fetch(context.Background(), stale))
	assert.Empty(t, s.Selected())

	require.NoError(t, s.Fetch(context.Background(), s.Begin()))
	assert.Equal(t, []string{"sports"}, s.Selected())
}
