package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResourceKind names a backend collection of user-owned records.
type ResourceKind string

const (
	ResourceQuotes    ResourceKind = "quotes"
	ResourceInterests ResourceKind = "interests"
)

var (
	ErrMissingID      = errors.New("record has no id")
	ErrMissingOwner   = errors.New("record has no owner")
	ErrMissingCreated = errors.New("record has no created_at")
	ErrEmptyPayload   = errors.New("payload is empty")
)

// Record is implemented by every resource kind held in an optimistic store.
type Record interface {
	// RecordID is the server-assigned id, empty until persisted.
	RecordID() string
	// Created is the server-assigned creation time, zero until persisted.
	Created() time.Time
	// Validate checks the shape of a record returned by the backend.
	Validate() error
	// Payload returns the user-entered text of the record.
	Payload() string
}

// Quote is a free-text quote saved by a user.
type Quote struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (q Quote) RecordID() string   { return q.ID }
func (q Quote) Created() time.Time { return q.CreatedAt }
func (q Quote) Payload() string    { return q.Text }

func (q Quote) Validate() error {
	return validateRecord(q.ID, q.UserID, q.CreatedAt, q.Text)
}

// Interest is an individually created interest tag.
type Interest struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (i Interest) RecordID() string   { return i.ID }
func (i Interest) Created() time.Time { return i.CreatedAt }
func (i Interest) Payload() string    { return i.Name }

func (i Interest) Validate() error {
	return validateRecord(i.ID, i.UserID, i.CreatedAt, i.Name)
}

// InterestKey is the comparison key for interest names: trimmed and
// case-folded, so "Stoic" and " stoic " collide.
func InterestKey(i Interest) string {
	return strings.ToLower(strings.TrimSpace(i.Name))
}

func validateRecord(id, owner string, created time.Time, payload string) error {
	switch {
	case id == "":
		return ErrMissingID
	case owner == "":
		return fmt.Errorf("%w: %s", ErrMissingOwner, id)
	case created.IsZero():
		return fmt.Errorf("%w: %s", ErrMissingCreated, id)
	case strings.TrimSpace(payload) == "":
		return fmt.Errorf("%w: %s", ErrEmptyPayload, id)
	}
	return nil
}
