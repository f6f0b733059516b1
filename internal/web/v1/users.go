package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/wanderlust/internal/core/domain"
	logicv1 "github.com/duynhne/wanderlust/internal/logic/v1"
	"github.com/duynhne/wanderlust/internal/session"
	"github.com/duynhne/wanderlust/middleware"
)

// SignupForm renders the signup page.
func (h *Handler) SignupForm(c *gin.Context) {
	h.render(c, http.StatusOK, "users/signup", nil)
}

// Signup registers an account and logs it in.
func (h *Handler) Signup(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)
	sess := session.Current(c)

	var req domain.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		middleware.RecordAuthEvent("signup", "invalid")
		sess.AddFlash(session.FlashError, validationMessage(err))
		c.Redirect(http.StatusFound, "/signup")
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	user, err := h.auth.Register(ctx, req)
	if err != nil {
		if errors.Is(err, logicv1.ErrUserExists) {
			middleware.RecordAuthEvent("signup", "duplicate")
			logger.Info().Str("username", req.Username).Msg("Signup rejected, username taken")
			sess.AddFlash(session.FlashError, "A user with the given username is already registered")
			c.Redirect(http.StatusFound, "/signup")
			return
		}
		if errors.Is(err, logicv1.ErrPasswordTooLong) {
			middleware.RecordAuthEvent("signup", "invalid")
			sess.AddFlash(session.FlashError, fmt.Sprintf("password must be at most %d bytes", logicv1.MaxPasswordBytes))
			c.Redirect(http.StatusFound, "/signup")
			return
		}
		span.RecordError(err)
		middleware.RecordAuthEvent("signup", "error")
		_ = c.Error(err)
		return
	}

	if err := h.sessions.Login(sess, user.ID); err != nil {
		span.RecordError(err)
		_ = c.Error(err)
		return
	}

	middleware.RecordAuthEvent("signup", "success")
	logger.Info().Str("user_id", user.ID).Msg("Signup successful")
	sess.AddFlash(session.FlashSuccess, "Welcome to Wanderlust!")
	c.Redirect(http.StatusFound, "/listings")
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "users/login", nil)
}

// Login authenticates the local strategy and sends the user back to the page
// that required login, if any.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)
	sess := session.Current(c)

	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		middleware.RecordAuthEvent("login", "invalid")
		sess.AddFlash(session.FlashError, "Password or username is incorrect")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	user, err := h.auth.Authenticate(ctx, req)
	if err != nil {
		if errors.Is(err, logicv1.ErrInvalidCredentials) {
			middleware.RecordAuthEvent("login", "failure")
			logger.Info().Str("username", req.Username).Msg("Login failed")
			sess.AddFlash(session.FlashError, "Password or username is incorrect")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		span.RecordError(err)
		middleware.RecordAuthEvent("login", "error")
		_ = c.Error(err)
		return
	}

	if err := h.sessions.Login(sess, user.ID); err != nil {
		span.RecordError(err)
		_ = c.Error(err)
		return
	}

	middleware.RecordAuthEvent("login", "success")
	logger.Info().Str("user_id", user.ID).Msg("Login successful")
	sess.AddFlash(session.FlashSuccess, "Welcome back!")
	c.Redirect(http.StatusFound, redirectTarget(sess.Pop(returnToKey)))
}

// Logout ends the authenticated state but keeps the session for the flash.
func (h *Handler) Logout(c *gin.Context) {
	sess := session.Current(c)
	if sess.IsAuthenticated() {
		middleware.RecordAuthEvent("logout", "success")
	}
	h.sessions.Logout(sess)
	sess.AddFlash(session.FlashSuccess, "Goodbye!")
	c.Redirect(http.StatusFound, "/listings")
}

// redirectTarget only follows local paths.
func redirectTarget(returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.HasPrefix(returnTo, "/\\") {
		return "/listings"
	}
	return returnTo
}
