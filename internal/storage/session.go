package storage

import (
	"context"
	"errors"
	"time"
)

// Session-scoped value names.
const (
	NameKTPID        = "ktpID"
	NameDOB          = "dob"
	NameReferralCode = "referral-code"
)

// SessionTTL bounds how long identity values outlive the last write.
const SessionTTL = 24 * time.Hour

// Session scopes string values to one shopper session.
type Session struct {
	store Store
	id    string
}

// NewSession binds store to a session id. A nil store yields a session that
// remembers nothing.
func NewSession(store Store, id string) Session {
	return Session{store: store, id: id}
}

// ID returns the session id.
func (s Session) ID() string { return s.id }

// Get returns the value stored under name, or "" when absent or unavailable.
func (s Session) Get(ctx context.Context, name string) (string, error) {
	if s.store == nil || s.id == "" {
		return "", nil
	}
	data, err := s.store.Get(ctx, Key(s.id, name))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Set stores value under name for SessionTTL.
func (s Session) Set(ctx context.Context, name, value string) error {
	if s.store == nil || s.id == "" {
		return nil
	}
	return s.store.Set(ctx, Key(s.id, name), []byte(value), SessionTTL)
}

// Delete removes name.
func (s Session) Delete(ctx context.Context, name string) error {
	if s.store == nil || s.id == "" {
		return nil
	}
	return s.store.Delete(ctx, Key(s.id, name))
}
