package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	logicv1 "github.com/duynhne/wanderlust/internal/logic/v1"
	"github.com/duynhne/wanderlust/internal/session"
	"github.com/duynhne/wanderlust/middleware"
)

// Handler groups the HTML handlers of the site.
// Dependencies are injected via the constructor; there is no global state.
type Handler struct {
	auth         *logicv1.AuthService
	listings     *logicv1.ListingService
	reviews      *logicv1.ReviewService
	sessions     *session.Manager
	loginLimiter *middleware.RateLimiter
}

// NewHandler creates a new Handler.
func NewHandler(
	auth *logicv1.AuthService,
	listings *logicv1.ListingService,
	reviews *logicv1.ReviewService,
	sessions *session.Manager,
	loginLimiter *middleware.RateLimiter,
) *Handler {
	return &Handler{
		auth:         auth,
		listings:     listings,
		reviews:      reviews,
		sessions:     sessions,
		loginLimiter: loginLimiter,
	}
}

// RegisterRoutes mounts the listing, review and user routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/listings")
	})

	listings := rg.Group("/listings")
	{
		listings.GET("", h.ListingIndex)
		listings.GET("/new", h.RequireLogin, h.NewListingForm)
		listings.POST("", h.RequireLogin, h.CreateListing)
		listings.GET("/:id", h.ShowListing)
		listings.GET("/:id/edit", h.RequireLogin, h.EditListingForm)
		listings.PUT("/:id", h.RequireLogin, h.UpdateListing)
		listings.DELETE("/:id", h.RequireLogin, h.DeleteListing)
	}

	reviews := rg.Group("/listings/:id/reviews", h.RequireLogin)
	{
		reviews.POST("", h.CreateReview)
		reviews.DELETE("/:reviewId", h.DeleteReview)
	}

	limit := h.loginLimiter.Middleware()
	rg.GET("/signup", h.SignupForm)
	rg.POST("/signup", limit, h.Signup)
	rg.GET("/login", h.LoginForm)
	rg.POST("/login", limit, h.Login)
	rg.POST("/logout", h.Logout)
}
