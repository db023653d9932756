package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
)

// ResourceAPI performs list/create/delete on one user-owned collection.
type ResourceAPI[R models.Record] struct {
	c    *HTTPClient
	kind models.ResourceKind

	// draft builds the create request body.
	draft func(userID string, payload R) any
	// owner reads the owner id of a record.
	owner func(R) string
	// withOwner returns r with its owner id set.
	withOwner func(r R, userID string) R
}

type quoteDraft struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type interestDraft struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// NewQuotesAPI returns the API for the quotes collection.
func NewQuotesAPI(c *HTTPClient) *ResourceAPI[models.Quote] {
	return &ResourceAPI[models.Quote]{
		c:    c,
		kind: models.ResourceQuotes,
		draft: func(userID string, q models.Quote) any {
			return quoteDraft{UserID: userID, Text: q.Text}
		},
		owner: func(q models.Quote) string { return q.UserID },
		withOwner: func(q models.Quote, userID string) models.Quote {
			q.UserID = userID
			return q
		},
	}
}

// NewInterestsAPI returns the API for the free-form interests collection.
func NewInterestsAPI(c *HTTPClient) *ResourceAPI[models.Interest] {
	return &ResourceAPI[models.Interest]{
		c:    c,
		kind: models.ResourceInterests,
		draft: func(userID string, i models.Interest) any {
			return interestDraft{UserID: userID, Name: i.Name, Category: i.Category}
		},
		owner: func(i models.Interest) string { return i.UserID },
		withOwner: func(i models.Interest, userID string) models.Interest {
			i.UserID = userID
			return i
		},
	}
}

// Kind returns the collection name.
func (a *ResourceAPI[R]) Kind() models.ResourceKind {
	return a.kind
}

func (a *ResourceAPI[R]) path() string {
	return "/api/" + string(a.kind)
}

// List returns the records owned by userID. Rows that fail validation or
// belong to someone else are dropped and logged.
func (a *ResourceAPI[R]) List(ctx context.Context, userID string) ([]R, error) {
	var rows []json.RawMessage
	q := url.Values{"user_id": {userID}}
	if err := a.c.Do(ctx, http.MethodGet, a.path(), nil, &rows, RequireSession(), WithQuery(q)); err != nil {
		return nil, err
	}

	result := make([]R, 0, len(rows))
	for n, raw := range rows {
		r, err := a.accept(raw, userID)
		if err != nil {
			a.c.log.Warn(ctx, "quarantined record", "kind", a.kind, "row", n, "error", err)
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// Create persists payload for userID and returns the stored record with its
// server-assigned id and creation time.
func (a *ResourceAPI[R]) Create(ctx context.Context, userID string, payload R) (R, error) {
	var zero R

	var raw json.RawMessage
	if err := a.c.Do(ctx, http.MethodPost, a.path(), a.draft(userID, payload), &raw, RequireSession()); err != nil {
		return zero, err
	}

	// Some backends answer with a one-element array of inserted rows.
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []json.RawMessage
		if err := json.Unmarshal(trimmed, &rows); err != nil || len(rows) == 0 {
			return zero, fmt.Errorf("%w: create %s returned no row", ErrMalformedResponse, a.kind)
		}
		raw = rows[0]
	}

	r, err := a.accept(raw, userID)
	if err != nil {
		return zero, err
	}
	return r, nil
}

// Delete removes the record with the given server id.
func (a *ResourceAPI[R]) Delete(ctx context.Context, id string) error {
	return a.c.Do(ctx, http.MethodDelete, a.path()+"/"+url.PathEscape(id), nil, nil, RequireSession())
}

// accept decodes and validates one record at the backend boundary. A missing
// owner is filled in with userID; a different owner is rejected.
func (a *ResourceAPI[R]) accept(raw json.RawMessage, userID string) (R, error) {
	var r R
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, a.kind, err)
	}

	switch owner := a.owner(r); {
	case owner == "":
		r = a.withOwner(r, userID)
	case owner != userID:
		return r, fmt.Errorf("%w: %s %s belongs to another user", ErrMalformedResponse, a.kind, r.RecordID())
	}

	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return r, nil
}
