// Package app assembles the Wanderlust HTTP application: the middleware
// pipeline, the site routes, the probes and the background session cleanup.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/wanderlust/config"
	"github.com/duynhne/wanderlust/internal/core/domain"
	logicv1 "github.com/duynhne/wanderlust/internal/logic/v1"
	"github.com/duynhne/wanderlust/internal/session"
	"github.com/duynhne/wanderlust/internal/web/templates"
	webv1 "github.com/duynhne/wanderlust/internal/web/v1"
	"github.com/duynhne/wanderlust/middleware"
)

const cleanupTimeout = 30 * time.Second

// Repositories are the storage ports the application runs on.
type Repositories struct {
	Users    domain.UserRepository
	Sessions domain.SessionRepository
	Listings domain.ListingRepository
	Reviews  domain.ReviewRepository
}

// App is one configured instance of the site.
type App struct {
	engine       *gin.Engine
	sessions     *session.Manager
	scheduler    *cron.Cron
	shuttingDown atomic.Bool
}

// New builds the application from configuration and repositories.
func New(cfg *config.Config, repos Repositories) (*App, error) {
	sessions, err := session.NewManager(repos.Sessions, cfg.Session.Secret, session.Options{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
		MaxAge:     cfg.GetSessionMaxAgeDuration(),
		TouchAfter: cfg.GetSessionTouchAfterDuration(),
	})
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	views, err := templates.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	h := webv1.NewHandler(
		logicv1.NewAuthService(repos.Users, cfg.Security.BcryptCost),
		logicv1.NewListingService(repos.Listings, repos.Reviews),
		logicv1.NewReviewService(repos.Listings, repos.Reviews),
		sessions,
		middleware.NewRateLimiter(cfg.Security.LoginRateLimit, cfg.Security.LoginRateBurst),
	)

	a := &App{
		engine:    gin.New(),
		sessions:  sessions,
		scheduler: cron.New(),
	}
	if _, err := a.scheduler.AddFunc(cfg.Session.CleanupCron, a.cleanupSessions); err != nil {
		return nil, fmt.Errorf("schedule session cleanup %q: %w", cfg.Session.CleanupCron, err)
	}

	r := a.engine
	r.SetHTMLTemplate(views)
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	r.Use(
		middleware.TracingMiddleware(cfg.Service.Name),
		middleware.LoggingMiddleware(),
		middleware.PrometheusMiddleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if a.shuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	site := []gin.HandlerFunc{
		middleware.Timeout(cfg.GetRequestTimeoutDuration()),
		middleware.ErrorHandler(h.RenderError),
		session.Middleware(sessions),
		h.AttachUser,
		h.Locals,
	}
	h.RegisterRoutes(r.Group("/", site...))
	r.NoRoute(append(site, middleware.NotFound)...)

	return a, nil
}

// Handler returns the root handler. Method override runs before routing so
// rewritten requests reach the PUT and DELETE routes.
func (a *App) Handler() http.Handler {
	return middleware.MethodOverride(a.engine)
}

// Start launches the background jobs.
func (a *App) Start() {
	a.scheduler.Start()
}

// BeginShutdown makes /ready fail so load balancers stop routing here.
func (a *App) BeginShutdown() {
	a.shuttingDown.Store(true)
}

// Close stops the background jobs, waiting for a running job until ctx ends.
func (a *App) Close(ctx context.Context) error {
	done := a.scheduler.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

func (a *App) cleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	n, err := a.sessions.CleanupExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Expired session cleanup failed")
		return
	}
	middleware.RecordSessionsCleaned(n)
	log.Info().Int64("deleted", n).Msg("Expired sessions cleaned up")
}
