package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated means a call needed a session and none was present.
	// A backend 401 (*RemoteError) also matches it under errors.Is.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTransientFetch wraps network failures and undecodable success bodies.
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrMalformedResponse marks a success body whose shape was rejected.
	ErrMalformedResponse = errors.New("malformed response")
)

// RemoteError is a non-success response from the backend.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// Is makes a 401 response indistinguishable from a local
// ErrUnauthenticated for callers using errors.Is.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// IsUnauthenticated reports whether err should send the user to sign-in.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
