// Package models defines client-side data models used by the quotekeeper CLI.
package models

import "time"

// User is an immutable snapshot of the authenticated identity.
type User struct {
	// ID is the opaque, stable identifier issued by the auth service.
	ID string `json:"id"`

	// Email is the address the user signed in with.
	Email string `json:"email"`

	// LastSignInAt is the moment of the most recent authentication.
	LastSignInAt time.Time `json:"last_sign_in_at"`
}

// Session is the live proof of authentication held by the client.
// A Session is always replaced as a whole; it is never patched in place.
type Session struct {
	User User

	// AccessToken is the bearer credential sent to the backend.
	AccessToken string

	// RefreshToken is used by the auth adapter to renew AccessToken.
	RefreshToken string

	// ExpiresAt is when AccessToken stops being accepted.
	ExpiresAt time.Time
}

// Expired reports whether the access token is no longer valid at now.
// A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionState is the process-wide view of who is signed in.
//
// Loading is true only until the first definite answer is known; afterwards
// Session is either nil (signed out) or the current session.
type SessionState struct {
	Session *Session
	Loading bool
}

// User returns the signed-in user or nil.
func (s SessionState) User() *User {
	if s.Session == nil {
		return nil
	}
	u := s.Session.User
	return &u
}

// UserID returns the signed-in user's id or an empty string.
func (s SessionState) UserID() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.User.ID
}

// SignedIn reports whether a session is present.
func (s SessionState) SignedIn() bool {
	return s.Session != nil
}
