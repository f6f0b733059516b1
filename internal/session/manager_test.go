package session

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/wanderlust/internal/core/repository/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T) (*Manager, *memory.Store, *clock) {
	t.Helper()
	store := memory.New()
	m, err := NewManager(store.Sessions(), "keyboard cat", DefaultOptions())
	require.NoError(t, err)
	clk := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clk.now
	return m, store, clk
}

func cookieValue(t *testing.T, m *Manager, s *Session) string {
	t.Helper()
	c, err := m.Cookie(s)
	require.NoError(t, err)
	return c.Value
}

// roundTrip saves s and loads it back through its cookie.
func roundTrip(t *testing.T, m *Manager, s *Session) *Session {
	t.Helper()
	ctx := context.Background()
	_, err := m.Save(ctx, s)
	require.NoError(t, err)
	loaded, err := m.Load(ctx, cookieValue(t, m, s))
	require.NoError(t, err)
	return loaded
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(memory.New().Sessions(), "", DefaultOptions())
	assert.Error(t, err)
}

func TestLoad_EmptyCookieCreatesAnonymousSession(t *testing.T) {
	m, store, clk := newTestManager(t)
	ctx := context.Background()

	s, err := m.Load(ctx, "")
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.False(t, s.IsAuthenticated())

	saved, err := m.Save(ctx, s)
	require.NoError(t, err)
	assert.True(t, saved, "new sessions are saved even when unmodified")
	assert.Equal(t, 1, store.SessionCount())
	assert.Equal(t, clk.t.Add(7*24*time.Hour), s.ExpiresAt())
}

func TestCookie_Attributes(t *testing.T) {
	m, _, clk := newTestManager(t)
	s := m.New()
	_, err := m.Save(context.Background(), s)
	require.NoError(t, err)

	c, err := m.Cookie(s)
	require.NoError(t, err)
	assert.Equal(t, "session", c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.Equal(t, clk.t.Add(7*24*time.Hour), c.Expires)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestLoad_TamperedCookieYieldsFreshSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	s := m.New()
	require.NoError(t, m.Login(s, "user-1"))
	_, err := m.Save(context.Background(), s)
	require.NoError(t, err)

	forged := s.ID() + ".AAAA"
	got, err := m.Load(context.Background(), forged)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), got.ID())
	assert.False(t, got.IsAuthenticated())

	got, err = m.Load(context.Background(), "no-dot-here")
	require.NoError(t, err)
	assert.True(t, got.IsNew())
}

func TestLoad_AlteredCookieValueIsRejected(t *testing.T) {
	m, _, _ := newTestManager(t)
	s := m.New()
	require.NoError(t, m.Login(s, "user-1"))
	_, err := m.Save(context.Background(), s)
	require.NoError(t, err)

	value := []byte(cookieValue(t, m, s))
	if value[3] == 'A' {
		value[3] = 'B'
	} else {
		value[3] = 'A'
	}

	got, err := m.Load(context.Background(), string(value))
	require.NoError(t, err)
	assert.True(t, got.IsNew())
	assert.False(t, got.IsAuthenticated())
}

func TestCodec_RecordsAreBoundToTheirID(t *testing.T) {
	m, _, _ := newTestManager(t)

	data, err := m.codec.seal("session-a", &payload{UserID: "user-1"})
	require.NoError(t, err)

	var p payload
	require.NoError(t, m.codec.open("session-a", data, &p))
	assert.Equal(t, "user-1", p.UserID)
	assert.Error(t, m.codec.open("session-b", data, &p))
}

func TestLoad_ExpiredSessionYieldsFreshSession(t *testing.T) {
	m, _, clk := newTestManager(t)
	s := m.New()
	require.NoError(t, m.Login(s, "user-1"))
	_, err := m.Save(context.Background(), s)
	require.NoError(t, err)

	clk.advance(7*24*time.Hour + time.Second)

	got, err := m.Load(context.Background(), cookieValue(t, m, s))
	require.NoError(t, err)
	assert.True(t, got.IsNew())
	assert.False(t, got.IsAuthenticated())
}

func TestStoredDataIsEncrypted(t *testing.T) {
	m, store, _ := newTestManager(t)
	s := m.New()
	require.NoError(t, m.Login(s, "user-secret-id"))
	s.AddFlash(FlashSuccess, "Welcome back!")
	_, err := m.Save(context.Background(), s)
	require.NoError(t, err)

	rec, ok := store.SessionRecord(s.ID())
	require.True(t, ok)
	assert.False(t, bytes.Contains(rec.Data, []byte("user-secret-id")))
	assert.False(t, bytes.Contains(rec.Data, []byte("Welcome back!")))

	other, err := NewManager(store.Sessions(), "another secret", DefaultOptions())
	require.NoError(t, err)
	_, accepted := other.codec.unsign(cookieValue(t, m, s))
	assert.False(t, accepted, "cookies signed with another secret are rejected")
}

func TestFlash_SingleRead(t *testing.T) {
	m, _, _ := newTestManager(t)

	// request N queues the message
	s := m.New()
	s.AddFlash(FlashSuccess, "Welcome to Wanderlust!")

	// request N+1 sees it
	s = roundTrip(t, m, s)
	assert.Equal(t, []string{"Welcome to Wanderlust!"}, s.Flashes(FlashSuccess))
	assert.Nil(t, s.Flashes(FlashError))

	// request N+2 does not
	s = roundTrip(t, m, s)
	assert.Nil(t, s.Flashes(FlashSuccess))
}

func TestSave_TouchAfterThreshold(t *testing.T) {
	m, store, clk := newTestManager(t)
	ctx := context.Background()

	s := m.New()
	_, err := m.Save(ctx, s)
	require.NoError(t, err)
	firstExpiry := s.ExpiresAt()

	clk.advance(time.Hour)
	s, err = m.Load(ctx, cookieValue(t, m, s))
	require.NoError(t, err)
	saved, err := m.Save(ctx, s)
	require.NoError(t, err)
	assert.False(t, saved, "unmodified sessions younger than TouchAfter are left alone")

	clk.advance(24 * time.Hour)
	s, err = m.Load(ctx, cookieValue(t, m, s))
	require.NoError(t, err)
	saved, err = m.Save(ctx, s)
	require.NoError(t, err)
	assert.True(t, saved)

	rec, ok := store.SessionRecord(s.ID())
	require.True(t, ok)
	assert.True(t, rec.ExpiresAt.After(firstExpiry))
	assert.Equal(t, clk.t.Add(7*24*time.Hour), rec.ExpiresAt)
}

func TestLogin_RegeneratesAndLogoutKeepsSession(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s := m.New()
	s.Set("returnTo", "/listings/new")
	_, err := m.Save(ctx, s)
	require.NoError(t, err)
	anonID := s.ID()

	require.NoError(t, m.Login(s, "user-1"))
	assert.NotEqual(t, anonID, s.ID())

	s = roundTrip(t, m, s)
	_, stillThere := store.SessionRecord(anonID)
	assert.False(t, stillThere, "the pre-login record is deleted")
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "user-1", s.UserID())
	assert.Equal(t, "/listings/new", s.Pop("returnTo"), "values survive regeneration")

	loggedInID := s.ID()
	m.Logout(s)
	s.AddFlash(FlashSuccess, "Goodbye!")
	s = roundTrip(t, m, s)
	assert.Equal(t, loggedInID, s.ID())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, []string{"Goodbye!"}, s.Flashes(FlashSuccess))
}

func TestLogin_RejectsEmptyUser(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.Error(t, m.Login(m.New(), ""))
}

func TestCleanupExpired(t *testing.T) {
	m, store, clk := newTestManager(t)
	ctx := context.Background()

	_, err := m.Save(ctx, m.New())
	require.NoError(t, err)
	clk.advance(8 * 24 * time.Hour)
	_, err = m.Save(ctx, m.New())
	require.NoError(t, err)

	n, err := m.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.SessionCount())
}
