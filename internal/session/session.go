// Package session stores the identity pair that scopes every task request.
//
// A session is a non-verifying identifier capture: any non-empty user id and
// email are accepted. It lives in a file in the config directory and is
// treated as absent once it expires.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Lifetime is how long a stored session stays valid.
const Lifetime = 7 * 24 * time.Hour

var (
	// ErrNoSession is returned when no live session exists.
	ErrNoSession = errors.New("not logged in")

	// ErrMissingFields is returned when the user id or email is empty.
	ErrMissingFields = errors.New("user id and email required")
)

// Session is the identity pair of the current user.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether s is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists a Session as JSON at a fixed path.
type Store struct {
	path string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store backed by the file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Set stores a new session for userID and email, valid for Lifetime.
func (s *Store) Set(userID, email string) (Session, error) {
	userID = strings.TrimSpace(userID)
	email = strings.TrimSpace(email)
	if userID == "" || email == "" {
		return Session{}, ErrMissingFields
	}

	sess := Session{
		UserID:    userID,
		Email:     email,
		ExpiresAt: s.now().Add(Lifetime).UTC(),
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return Session{}, err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return Session{}, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Get returns the stored session. Missing, corrupt and expired sessions all
// yield ErrNoSession.
func (s *Store) Get() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}, ErrNoSession
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, ErrNoSession
	}
	if sess.UserID == "" || sess.Expired(s.now()) {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// IsAuthenticated reports whether a live session with a user id exists.
func (s *Store) IsAuthenticated() bool {
	_, err := s.Get()
	return err == nil
}

// Exists reports whether a session file is present, live or not.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Clear removes the stored session. Clearing an absent session succeeds.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
