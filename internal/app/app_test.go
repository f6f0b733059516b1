package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/wanderlust/config"
	"github.com/duynhne/wanderlust/internal/core/domain"
	"github.com/duynhne/wanderlust/internal/core/repository/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{Name: "wanderlust-test", Env: "test", Port: "8080"},
		Session: config.SessionConfig{
			Secret:      "keyboard cat",
			CookieName:  "session",
			MaxAge:      "168h",
			TouchAfter:  "24h",
			CleanupCron: "@every 1h",
		},
		Security: config.SecurityConfig{BcryptCost: 4, LoginRateLimit: 100, LoginRateBurst: 100},
		Server:   config.ServerConfig{RequestTimeout: "5s"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*App, *memory.Store) {
	t.Helper()
	store := memory.New()
	a, err := New(cfg, Repositories{
		Users:    store.Users(),
		Sessions: store.Sessions(),
		Listings: store.Listings(),
		Reviews:  store.Reviews(),
	})
	require.NoError(t, err)
	return a, store
}

// browser keeps the session cookie between requests like a real client.
type browser struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newBrowser(t *testing.T, a *App) *browser {
	return &browser{t: t, h: a.Handler()}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil)
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, target, form)
}

func (b *browser) signup(username string) {
	b.t.Helper()
	rec := b.post("/signup", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret123"},
	})
	require.Equal(b.t, http.StatusFound, rec.Code)
	require.Equal(b.t, "/listings", rec.Header().Get("Location"))
}

func listingForm(title string) url.Values {
	return url.Values{
		"listing[title]":       {title},
		"listing[description]": {"Quiet place by the sea"},
		"listing[image]":       {"https://example.com/cabin.jpg"},
		"listing[price]":       {"1200"},
		"listing[location]":    {"Goa"},
		"listing[country]":     {"India"},
	}
}

func onlyListing(t *testing.T, store *memory.Store) domain.Listing {
	t.Helper()
	listings, err := store.Listings().List(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	return listings[0]
}

func TestRootRedirectsToListings(t *testing.T) {
	a, _ := newTestApp(t, testConfig())

	rec := newBrowser(t, a).get("/")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	a, _ := newTestApp(t, testConfig())

	rec := newBrowser(t, a).get("/no/such/page")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")
}

func TestProbes(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)

	assert.Equal(t, http.StatusOK, b.get("/health").Code)
	assert.Equal(t, http.StatusOK, b.get("/ready").Code)
	assert.Equal(t, http.StatusOK, b.get("/metrics").Code)

	a.BeginShutdown()
	rec := b.get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting_down")
}

func TestSessionCookieAttributes(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	b := newBrowser(t, a)

	b.get("/listings")

	require.NotNil(t, b.cookie)
	assert.True(t, b.cookie.HttpOnly)
	assert.Equal(t, "/", b.cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, b.cookie.SameSite)
	assert.Equal(t, 7*24*60*60, b.cookie.MaxAge)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), b.cookie.Expires, time.Minute)
	assert.Equal(t, 1, store.SessionCount(), "new sessions are stored even when empty")
}

func TestSignupLogsInAndFlashesOnce(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)

	b.signup("alice")

	page := b.get("/listings").Body.String()
	assert.Contains(t, page, "Welcome to Wanderlust!")
	assert.Contains(t, page, "alice")

	assert.NotContains(t, b.get("/listings").Body.String(), "Welcome to Wanderlust!")
	assert.Equal(t, http.StatusOK, b.get("/listings/new").Code)
}

func TestSignupDuplicateUsername(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	newBrowser(t, a).signup("alice")

	b := newBrowser(t, a)
	rec := b.post("/signup", url.Values{
		"username": {"alice"},
		"email":    {"other@example.com"},
		"password": {"secret123"},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/signup").Body.String(), "A user with the given username is already registered")
}

func TestSignupPasswordTooLongFlashesAndRedirects(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	b := newBrowser(t, a)

	rec := b.post("/signup", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {strings.Repeat("p", 80)},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/signup").Body.String(), "password must be at most 72 bytes")

	user, err := store.Users().GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLoginAfterSignup(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	newBrowser(t, a).signup("alice")

	b := newBrowser(t, a)
	rec := b.post("/login", url.Values{"username": {"alice"}, "password": {"secret123"}})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/listings").Body.String(), "Welcome back!")
	assert.Equal(t, http.StatusOK, b.get("/listings/new").Code)
}

func TestLoginRotatesSessionID(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	newBrowser(t, a).signup("alice")

	b := newBrowser(t, a)
	b.get("/login")
	before := b.cookie.Value
	sessionsBefore := store.SessionCount()

	b.post("/login", url.Values{"username": {"alice"}, "password": {"secret123"}})

	assert.NotEqual(t, before, b.cookie.Value)
	assert.Equal(t, sessionsBefore, store.SessionCount(), "the pre-login record is replaced, not kept")
}

func TestBadLoginStaysAnonymous(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	newBrowser(t, a).signup("alice")

	b := newBrowser(t, a)
	rec := b.post("/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/login").Body.String(), "Password or username is incorrect")

	rec = b.get("/listings/new")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginUnknownUserLooksLikeBadPassword(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)

	rec := b.post("/login", url.Values{"username": {"nobody"}, "password": {"secret123"}})

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/login").Body.String(), "Password or username is incorrect")
}

func TestLogoutMakesNextRequestAnonymous(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)
	b.signup("alice")

	rec := b.post("/logout", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))

	page := b.get("/listings").Body.String()
	assert.Contains(t, page, "Goodbye!")
	assert.Contains(t, page, "Log in")

	rec = b.get("/listings/new")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogoutIgnoresGet(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)
	b.signup("alice")

	assert.Equal(t, http.StatusNotFound, b.get("/logout").Code)
	assert.Equal(t, http.StatusOK, b.get("/listings/new").Code, "a cross-site GET cannot end the session")
}

func TestRequireLoginRemembersReturnTo(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	newBrowser(t, a).signup("alice")

	b := newBrowser(t, a)
	rec := b.get("/listings/new")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, b.get("/login").Body.String(), "You must be logged in first!")

	rec = b.post("/login", url.Values{"username": {"alice"}, "password": {"secret123"}})
	assert.Equal(t, "/listings/new", rec.Header().Get("Location"))

	b.post("/logout", nil)
	rec = b.post("/login", url.Values{"username": {"alice"}, "password": {"secret123"}})
	assert.Equal(t, "/listings", rec.Header().Get("Location"), "returnTo is cleared after use")
}

func TestTamperedCookieGetsFreshAnonymousSession(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)
	b.signup("alice")

	original := b.cookie.Value
	b.cookie = &http.Cookie{Name: "session", Value: original + "x"}

	rec := b.get("/listings/new")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotEqual(t, original, b.cookie.Value)
}

func TestDeletedUserBecomesAnonymous(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	b := newBrowser(t, a)
	b.signup("alice")

	ctx := context.Background()
	user, err := store.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NoError(t, store.Users().Delete(ctx, user.ID))

	rec := b.get("/listings")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log in")

	rec = b.get("/listings/new")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestListingLifecycle(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	owner := newBrowser(t, a)
	owner.signup("alice")

	rec := owner.post("/listings", listingForm("Beach cabin"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))
	assert.Contains(t, owner.get("/listings").Body.String(), "New Listing Created!")

	l := onlyListing(t, store)
	assert.Equal(t, "Beach cabin", l.Title)
	assert.Equal(t, 1200, l.Price)

	page := owner.get("/listings/" + l.ID).Body.String()
	assert.Contains(t, page, "Beach cabin")
	assert.Contains(t, page, "/listings/"+l.ID+"/edit")

	assert.Equal(t, http.StatusOK, owner.get("/listings/"+l.ID+"/edit").Code)

	rec = owner.post("/listings/"+l.ID+"?_method=PUT", listingForm("Beach villa"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings/"+l.ID, rec.Header().Get("Location"))
	assert.Contains(t, owner.get("/listings/"+l.ID).Body.String(), "Listing Updated!")
	assert.Equal(t, "Beach villa", onlyListing(t, store).Title)

	rec = owner.post("/listings/"+l.ID+"?_method=DELETE", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))
	assert.Contains(t, owner.get("/listings").Body.String(), "Listing Deleted!")

	listings, err := store.Listings().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestNonOwnerCannotChangeListing(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	owner := newBrowser(t, a)
	owner.signup("alice")
	owner.post("/listings", listingForm("Beach cabin"))
	l := onlyListing(t, store)

	other := newBrowser(t, a)
	other.signup("bob")

	assert.NotContains(t, other.get("/listings/"+l.ID).Body.String(), "/listings/"+l.ID+"/edit")

	rec := other.get("/listings/" + l.ID + "/edit")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings/"+l.ID, rec.Header().Get("Location"))
	assert.Contains(t, other.get("/listings/"+l.ID).Body.String(), "You are not the owner of this listing")

	rec = other.post("/listings/"+l.ID+"?_method=PUT", listingForm("Stolen"))
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = other.post("/listings/"+l.ID+"?_method=DELETE", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings/"+l.ID, rec.Header().Get("Location"))

	assert.Equal(t, "Beach cabin", onlyListing(t, store).Title)
}

func TestMissingListingFlashesAndRedirects(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)

	rec := b.get("/listings/does-not-exist")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/listings").Body.String(), "Listing you requested for does not exist!")
}

func TestInvalidListingIsBadRequest(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	b := newBrowser(t, a)
	b.signup("alice")

	form := listingForm("")
	form.Set("listing[price]", "-5")
	rec := b.post("/listings", form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "title is required")
	assert.Contains(t, body, "price must be at least 0")

	listings, err := store.Listings().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestListingPriceOutOfRangeIsBadRequest(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	b := newBrowser(t, a)
	b.signup("alice")

	form := listingForm("Beach cabin")
	form.Set("listing[price]", "3000000000")
	rec := b.post("/listings", form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price must be at most 2147483647")

	listings, err := store.Listings().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestReviewLifecycle(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	owner := newBrowser(t, a)
	owner.signup("alice")
	owner.post("/listings", listingForm("Beach cabin"))
	l := onlyListing(t, store)

	guest := newBrowser(t, a)
	guest.signup("bob")
	rec := guest.post("/listings/"+l.ID+"/reviews", url.Values{
		"review[rating]":  {"4"},
		"review[comment]": {"Lovely sunsets"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings/"+l.ID, rec.Header().Get("Location"))

	page := guest.get("/listings/" + l.ID).Body.String()
	assert.Contains(t, page, "New Review Created!")
	assert.Contains(t, page, "Lovely sunsets")
	assert.Contains(t, page, "@bob")

	reviews, err := store.Reviews().ListByListing(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	target := "/listings/" + l.ID + "/reviews/" + reviews[0].ID + "?_method=DELETE"

	owner.post(target, nil)
	assert.Contains(t, owner.get("/listings/"+l.ID).Body.String(), "You are not the author of this review")

	guest.post(target, nil)
	assert.Contains(t, guest.get("/listings/"+l.ID).Body.String(), "Review Deleted!")

	reviews, err = store.Reviews().ListByListing(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestReviewRequiresLogin(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	b := newBrowser(t, a)

	rec := b.post("/listings/any/reviews", url.Values{"review[rating]": {"5"}, "review[comment]": {"hi"}})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginIsThrottled(t *testing.T) {
	cfg := testConfig()
	cfg.Security.LoginRateLimit = 0
	cfg.Security.LoginRateBurst = 2
	a, _ := newTestApp(t, cfg)
	b := newBrowser(t, a)

	form := url.Values{"username": {"alice"}, "password": {"nope"}}
	assert.Equal(t, http.StatusFound, b.post("/login", form).Code)
	assert.Equal(t, http.StatusFound, b.post("/login", form).Code)

	rec := b.post("/login", form)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many attempts")
}

func TestCleanupSessionsRemovesExpired(t *testing.T) {
	a, store := newTestApp(t, testConfig())
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, store.Sessions().Upsert(ctx, &domain.SessionRecord{
		ID:        "expired",
		Data:      []byte("x"),
		ExpiresAt: past,
		UpdatedAt: past.Add(-7 * 24 * time.Hour),
	}))
	newBrowser(t, a).get("/listings")
	require.Equal(t, 2, store.SessionCount())

	a.cleanupSessions()

	assert.Equal(t, 1, store.SessionCount())
	_, ok := store.SessionRecord("expired")
	assert.False(t, ok)
}

func TestNewRejectsBadCleanupSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Session.CleanupCron = "every now and then"

	_, err := New(cfg, Repositories{Sessions: memory.New().Sessions()})

	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, a.Close(ctx))
}
