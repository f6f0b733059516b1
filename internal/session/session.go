// Package session implements server-side browser sessions stored in the
// application database.
//
// A session is resolved for every request. Unknown, expired or tampered
// cookies silently produce a fresh anonymous session; only store failures are
// reported as errors. Sessions are written when new or modified, and an
// unmodified session is touched in the store once its last write is older
// than Options.TouchAfter.
//
// The session also carries flash messages: notices queued during one request
// and consumed by the next rendered one.
package session

import "time"

// Flash categories used by the application.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// payload is the part of a session that is encrypted into the store.
type payload struct {
	UserID    string              `json:"user_id,omitempty"`
	Flash     map[string][]string `json:"flash,omitempty"`
	Values    map[string]string   `json:"values,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// Session is the per-request view of a stored session. It is not safe for
// concurrent use; each request owns its Session.
type Session struct {
	id        string
	data      payload
	expiresAt time.Time
	updatedAt time.Time

	isNew      bool
	modified   bool
	previousID string
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session has not been persisted yet.
func (s *Session) IsNew() bool { return s.isNew }

// ExpiresAt returns the absolute expiry of the session as last persisted.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// UserID returns the authenticated user's identifier, or "" when anonymous.
func (s *Session) UserID() string { return s.data.UserID }

// IsAuthenticated reports whether a user is attached to the session.
func (s *Session) IsAuthenticated() bool { return s.data.UserID != "" }

// Get returns a stored value.
func (s *Session) Get(key string) string { return s.data.Values[key] }

// Set stores a value.
func (s *Session) Set(key, value string) {
	if s.data.Values == nil {
		s.data.Values = make(map[string]string)
	}
	s.data.Values[key] = value
	s.modified = true
}

// Pop returns a stored value and removes it.
func (s *Session) Pop(key string) string {
	v, ok := s.data.Values[key]
	if !ok {
		return ""
	}
	delete(s.data.Values, key)
	s.modified = true
	return v
}

// AddFlash queues a message under category for the next rendered request.
func (s *Session) AddFlash(category, message string) {
	if s.data.Flash == nil {
		s.data.Flash = make(map[string][]string)
	}
	s.data.Flash[category] = append(s.data.Flash[category], message)
	s.modified = true
}

// Flashes returns and clears the messages queued under category.
func (s *Session) Flashes(category string) []string {
	msgs, ok := s.data.Flash[category]
	if !ok {
		return nil
	}
	delete(s.data.Flash, category)
	s.modified = true
	return msgs
}

// clearUser detaches the user without regenerating the session.
func (s *Session) clearUser() {
	if s.data.UserID == "" {
		return
	}
	s.data.UserID = ""
	s.modified = true
}
