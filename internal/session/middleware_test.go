package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestMiddleware_CommitsBeforeRedirect(t *testing.T) {
	m, store, _ := newTestManager(t)

	r := gin.New()
	r.Use(Middleware(m))
	r.POST("/flash", func(c *gin.Context) {
		Current(c).AddFlash(FlashSuccess, "saved")
		c.Redirect(http.StatusFound, "/show")
	})
	r.GET("/show", func(c *gin.Context) {
		c.String(http.StatusOK, "%v", Current(c).Flashes(FlashSuccess))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/flash", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	cookie := sessionCookie(t, rec, "session")
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, store.SessionCount())

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "[saved]", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestMiddleware_CommitsWhenNothingWritten(t *testing.T) {
	m, store, _ := newTestManager(t)

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/quiet", func(c *gin.Context) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiet", nil))

	assert.NotNil(t, sessionCookie(t, rec, "session"))
	assert.Equal(t, 1, store.SessionCount())
}

func TestCurrent_OutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, Current(c))
}

func TestMiddleware_CommitsBeforeStreamFlush(t *testing.T) {
	m, store, _ := newTestManager(t)

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/stream", func(c *gin.Context) {
		Current(c).AddFlash(FlashSuccess, "streamed")
		c.Writer.Flush()
		_, _ = c.Writer.WriteString("chunk")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.True(t, rec.Flushed)
	assert.NotNil(t, sessionCookie(t, rec, "session"))
	assert.Equal(t, 1, store.SessionCount())
}
