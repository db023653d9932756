package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
)

const (
	pathProfile    = "/api/me"
	pathDailyQuote = "/api/daily-quote"
)

// GetProfile fetches the signed-in user's profile.
func (c *HTTPClient) GetProfile(ctx context.Context) (models.Profile, error) {
	var p models.Profile
	if err := c.Do(ctx, http.MethodGet, pathProfile, nil, &p, RequireSession()); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

type profileUpdate struct {
	Interests []string `json:"interests"`
}

// UpdateProfile replaces the predefined interest selection as a whole and
// returns the updated profile. When the response does not echo the
// selection, the sent selection is assumed.
func (c *HTTPClient) UpdateProfile(ctx context.Context, interests []string) (models.Profile, error) {
	if interests == nil {
		interests = []string{}
	}

	var p models.Profile
	if err := c.Do(ctx, http.MethodPut, pathProfile, profileUpdate{Interests: interests}, &p, RequireSession()); err != nil {
		return models.Profile{}, err
	}
	if p.Interests == nil {
		p.Interests = append([]string(nil), interests...)
	}
	return p, nil
}

// DailyQuote fetches the quote of the day. It works without a session; a
// present session only personalizes the content.
func (c *HTTPClient) DailyQuote(ctx context.Context) (models.DailyQuote, error) {
	var q models.DailyQuote
	if err := c.Do(ctx, http.MethodGet, pathDailyQuote, nil, &q); err != nil {
		return models.DailyQuote{}, err
	}
	if q.Quote == "" {
		return models.DailyQuote{}, fmt.Errorf("%w: daily quote has no text", ErrMalformedResponse)
	}
	return q, nil
}
