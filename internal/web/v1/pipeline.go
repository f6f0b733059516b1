package v1

import (
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"

	"github.com/duynhne/wanderlust/internal/core/domain"
	"github.com/duynhne/wanderlust/internal/session"
)

// Context keys shared with the templates.
const (
	currUserKey = "currUser"
	successKey  = "success"
	errorKey    = "error"
)

const returnToKey = "returnTo"

// AttachUser resolves the session's user. A user ID that no longer maps to
// an account makes the request anonymous instead of failing it.
func (h *Handler) AttachUser(c *gin.Context) {
	sess := session.Current(c)
	if sess == nil || !sess.IsAuthenticated() {
		c.Set(currUserKey, (*domain.User)(nil))
		c.Next()
		return
	}

	ctx := c.Request.Context()
	user, err := h.auth.DeserializeUser(ctx, sess.UserID())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	if user == nil {
		logger := pkgzerolog.FromContext(ctx)
		logger.Warn().Str("user_id", sess.UserID()).Msg("Session user no longer exists")
		h.sessions.Forget(sess)
	}

	c.Set(currUserKey, user)
	c.Next()
}

// Locals moves pending flash messages into the template context. Reading a
// flash consumes it, so each message is shown on exactly one request.
func (h *Handler) Locals(c *gin.Context) {
	if sess := session.Current(c); sess != nil {
		c.Set(successKey, sess.Flashes(session.FlashSuccess))
		c.Set(errorKey, sess.Flashes(session.FlashError))
	}
	c.Next()
}

// RequireLogin sends anonymous visitors to the login form, remembering where
// they were going when it was a page view.
func (h *Handler) RequireLogin(c *gin.Context) {
	if currentUser(c) != nil {
		c.Next()
		return
	}

	sess := session.Current(c)
	if c.Request.Method == http.MethodGet {
		sess.Set(returnToKey, c.Request.URL.RequestURI())
	}
	sess.AddFlash(session.FlashError, "You must be logged in first!")
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
