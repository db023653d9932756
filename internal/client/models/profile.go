package models

import (
	"bytes"
	"encoding/json"
)

// InterestOptions is the fixed list of predefined interest tags a user can
// select on the profile record.
var InterestOptions = []string{"stoic", "sports", "general"}

// Profile is the user's profile record as served by /api/me.
type Profile struct {
	ID        string   `json:"id,omitempty"`
	Email     string   `json:"email,omitempty"`
	Interests []string `json:"interests"`
}

// UnmarshalJSON accepts either a single profile object or an array of
// profile rows, in which case the first row is used. An empty array yields
// an empty profile.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []plain
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return err
		}
		*p = Profile{}
		if len(rows) > 0 {
			*p = Profile(rows[0])
		}
		return nil
	}

	var v plain
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*p = Profile(v)
	return nil
}

// DailyQuote is the quote of the day served by /api/daily-quote.
type DailyQuote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Attribution returns the author, or "Unknown" when the backend sent none.
func (d DailyQuote) Attribution() string {
	if d.Author == "" {
		return "Unknown"
	}
	return d.Author
}
