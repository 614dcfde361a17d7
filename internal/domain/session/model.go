package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// DefaultLifetime is how long a session stays valid after login.
const DefaultLifetime = 90 * 24 * time.Hour

// idBytes yields a 64-character hex session ID.
const idBytes = 32

// Domain errors
var (
	ErrNotLoggedIn    = errors.New("User is not logged in.")
	ErrInvalidSession = errors.New("Invalid session.")
	ErrAlreadyEnded   = errors.New("Session already logged out.")
	ErrExpired        = errors.New("Session expired.")
	ErrNotFound       = errors.New("session not found")
)

// Session is a cookie-bound row granting access until ExpiresAt.
type Session struct {
	ID        string
	AccountID string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsActive  bool
}

// New creates an active session for accountID valid for lifetime from now.
// PRE: accountID is non-empty, lifetime > 0
// POST: Returns a session with fresh random ID and token
func New(accountID string, now time.Time, lifetime time.Duration) (Session, error) {
	id, err := randomHex(idBytes)
	if err != nil {
		return Session{}, err
	}
	token, err := randomHex(idBytes)
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:        id,
		AccountID: accountID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
		IsActive:  true,
	}, nil
}

// Check returns nil when the session grants access at now.
// INVARIANT: Session fields are not mutated
func (s Session) Check(now time.Time) error {
	if !s.IsActive {
		return ErrAlreadyEnded
	}
	if !now.Before(s.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
