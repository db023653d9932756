package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_GetAndUpdate(t *testing.T) {
	var putBody map[string][]string
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/me", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not authenticated"})
				return
			}
			// rows, the way the original profile endpoint answers
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "u1", "interests": []string{"stoic"}}})
		})
		r.Put("/api/me", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
			writeJSON(w, http.StatusOK, map[string]any{"message": "Updated"})
		})
	})

	c := New(srv.URL, signedIn("u1", "tok"))

	p, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stoic"}, p.Interests)

	p, err = c.UpdateProfile(context.Background(), []string{"sports", "general"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sports", "general"}, p.Interests)
	assert.Equal(t, []string{"sports", "general"}, putBody["interests"])

	_, err = c.UpdateProfile(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, putBody["interests"], "an empty selection is sent as [] not null")

	_, err = New(srv.URL, nil).GetProfile(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDailyQuote_WithoutSession(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/daily-quote", func(w http.ResponseWriter, r *http.Request) {
			author := "Seneca"
			if r.Header.Get("Authorization") != "" {
				author = "Marcus Aurelius"
			}
			writeJSON(w, http.StatusOK, models.DailyQuote{Quote: "We suffer more in imagination.", Author: author})
		})
	})

	q, err := New(srv.URL, nil).DailyQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Seneca", q.Author)

	q, err = New(srv.URL, signedIn("u1", "tok")).DailyQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Marcus Aurelius", q.Author)
}

func TestDailyQuote_EmptyQuoteRejected(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/daily-quote", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"author": "nobody"})
		})
	})

	_, err := New(srv.URL, nil).DailyQuote(context.Background())
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestResourceAPI_ListQuarantinesBadRows(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var gotUser string
	srv := newServer(t, func(r chi.Router) {
		r.Get("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
			gotUser = r.URL.Query().Get("user_id")
			writeJSON(w, http.StatusOK, []any{
				map[string]any{"id": "q1", "user_id": "u1", "text": "hi", "created_at": now},
				map[string]any{"id": "q2", "text": "no owner, filled in", "created_at": now},
				map[string]any{"id": "q3", "user_id": "u2", "text": "someone else", "created_at": now},
				map[string]any{"user_id": "u1", "text": "no id", "created_at": now},
				map[string]any{"id": "q5", "user_id": "u1", "text": 42},
			})
		})
	})

	api := NewQuotesAPI(New(srv.URL, signedIn("u1", "tok")))
	got, err := api.List(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", gotUser)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].ID)
	assert.Equal(t, "q2", got[1].ID)
	assert.Equal(t, "u1", got[1].UserID)
}

func TestResourceAPI_CreateAndDelete(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var created map[string]string
	var deleted string
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/interests", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			// array form, as a PostgREST gateway returns it
			writeJSON(w, http.StatusCreated, []any{map[string]any{
				"id": "i1", "user_id": created["user_id"], "name": created["name"], "created_at": now,
			}})
		})
		r.Delete("/api/interests/{id}", func(w http.ResponseWriter, r *http.Request) {
			deleted = chi.URLParam(r, "id")
			w.WriteHeader(http.StatusNoContent)
		})
	})

	api := NewInterestsAPI(New(srv.URL, signedIn("u1", "tok")))
	assert.Equal(t, models.ResourceInterests, api.Kind())

	rec, err := api.Create(context.Background(), "u1", models.Interest{Name: "Philosophy"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user_id": "u1", "name": "Philosophy"}, created)
	assert.Equal(t, "i1", rec.ID)
	assert.True(t, rec.CreatedAt.Equal(now))

	require.NoError(t, api.Delete(context.Background(), "i1"))
	assert.Equal(t, "i1", deleted)
}

func TestResourceAPI_CreateRejectsMalformed(t *testing.T) {
	srv := newServer(t, func(r chi.Router) {
		r.Post("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"text": "no id"})
		})
	})

	api := NewQuotesAPI(New(srv.URL, signedIn("u1", "tok")))
	_, err := api.Create(context.Background(), "u1", models.Quote{Text: "no id"})
	require.ErrorIs(t, err, ErrMalformedResponse)
	require.ErrorIs(t, err, models.ErrMissingID)
}
