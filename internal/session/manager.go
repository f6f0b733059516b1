package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/duynhne/wanderlust/internal/core/domain"
)

// Options configures the session cookie and store refresh policy.
type Options struct {
	CookieName string
	Secure     bool
	// MaxAge is the absolute lifetime granted on every write or touch.
	MaxAge time.Duration
	// TouchAfter is the minimum age of the last write before an unmodified
	// session is touched in the store again.
	TouchAfter time.Duration
}

// DefaultOptions returns a 7 day session refreshed at most once a day.
func DefaultOptions() Options {
	return Options{
		CookieName: "session",
		MaxAge:     7 * 24 * time.Hour,
		TouchAfter: 24 * time.Hour,
	}
}

// Manager resolves, persists and rotates sessions.
type Manager struct {
	store domain.SessionRepository
	codec *codec
	opts  Options
	now   func() time.Time
}

// NewManager creates a Manager backed by store. secret signs cookies and
// encrypts stored session data.
func NewManager(store domain.SessionRepository, secret string, opts Options) (*Manager, error) {
	c, err := newCodec(secret)
	if err != nil {
		return nil, err
	}
	def := DefaultOptions()
	if opts.CookieName == "" {
		opts.CookieName = def.CookieName
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = def.MaxAge
	}
	if opts.TouchAfter < 0 {
		opts.TouchAfter = 0
	}
	return &Manager{store: store, codec: c, opts: opts, now: time.Now}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.opts.CookieName }

// New returns an anonymous, unsaved session.
func (m *Manager) New() *Session {
	return &Session{
		id:    newID(),
		data:  payload{CreatedAt: m.now().UTC()},
		isNew: true,
	}
}

// Load resolves the session named by a cookie value. Missing, expired,
// tampered or undecryptable sessions yield a new anonymous session; only a
// store failure is returned as an error.
func (m *Manager) Load(ctx context.Context, cookieValue string) (*Session, error) {
	if cookieValue == "" {
		return m.New(), nil
	}
	id, ok := m.codec.unsign(cookieValue)
	if !ok {
		zerolog.Ctx(ctx).Debug().Msg("Session cookie signature mismatch")
		return m.New(), nil
	}

	rec, err := m.store.Get(ctx, id, m.now())
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec == nil {
		return m.New(), nil
	}

	s := &Session{id: rec.ID, expiresAt: rec.ExpiresAt, updatedAt: rec.UpdatedAt}
	if err := m.codec.open(rec.ID, rec.Data, &s.data); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Discarding unreadable session")
		return m.New(), nil
	}
	return s, nil
}

// Save persists s if it is new or modified, touches it if its last write is
// older than TouchAfter, and otherwise does nothing. It reports whether the
// store was written, in which case the cookie must be re-sent.
func (m *Manager) Save(ctx context.Context, s *Session) (bool, error) {
	now := m.now()

	if s.previousID != "" {
		if err := m.store.Delete(ctx, s.previousID); err != nil {
			return false, fmt.Errorf("delete rotated session: %w", err)
		}
		s.previousID = ""
	}

	switch {
	case s.isNew || s.modified:
		data, err := m.codec.seal(s.id, &s.data)
		if err != nil {
			return false, err
		}
		rec := &domain.SessionRecord{
			ID:        s.id,
			Data:      data,
			ExpiresAt: now.Add(m.opts.MaxAge),
			UpdatedAt: now,
		}
		if err := m.store.Upsert(ctx, rec); err != nil {
			return false, fmt.Errorf("save session: %w", err)
		}
		s.expiresAt, s.updatedAt = rec.ExpiresAt, rec.UpdatedAt

	case now.Sub(s.updatedAt) >= m.opts.TouchAfter:
		expiresAt := now.Add(m.opts.MaxAge)
		if err := m.store.Touch(ctx, s.id, expiresAt, now); err != nil {
			return false, fmt.Errorf("touch session: %w", err)
		}
		s.expiresAt, s.updatedAt = expiresAt, now

	default:
		return false, nil
	}

	s.isNew, s.modified = false, false
	return true, nil
}

// Regenerate moves the session to a fresh ID. Data is kept; the old record
// is deleted on the next Save.
func (m *Manager) Regenerate(s *Session) {
	if !s.isNew && s.previousID == "" {
		s.previousID = s.id
	}
	s.id = newID()
	s.isNew = true
}

// Login attaches userID to the session under a fresh session ID.
func (m *Manager) Login(s *Session, userID string) error {
	if userID == "" {
		return fmt.Errorf("login: empty user id")
	}
	m.Regenerate(s)
	s.data.UserID = userID
	s.modified = true
	return nil
}

// Logout detaches the user. The session itself survives so flash messages
// can still be queued for the redirect.
func (m *Manager) Logout(s *Session) {
	s.clearUser()
}

// Forget detaches a user that no longer resolves to an account.
func (m *Manager) Forget(s *Session) {
	s.clearUser()
}

// Cookie returns the cookie that carries s to the browser.
func (m *Manager) Cookie(s *Session) (*http.Cookie, error) {
	value, err := m.codec.sign(s.id)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  s.expiresAt,
		MaxAge:   int(m.opts.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// CleanupExpired removes expired sessions from the store.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func newID() string {
	return rand.Text()
}
