package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/wanderlust/internal/core/domain"
	logicv1 "github.com/duynhne/wanderlust/internal/logic/v1"
	"github.com/duynhne/wanderlust/internal/session"
	"github.com/duynhne/wanderlust/middleware"
)

// CreateReview adds the current user's review to a listing.
func (h *Handler) CreateReview(c *gin.Context) {
	listingID := c.Param("id")

	var in domain.ReviewInput
	if err := c.ShouldBind(&in); err != nil {
		_ = c.Error(middleware.NewAppError(http.StatusBadRequest, validationMessage(err)))
		return
	}

	if _, err := h.reviews.Create(c.Request.Context(), currentUser(c).ID, listingID, in); err != nil {
		h.listingFailed(c, listingID, err)
		return
	}
	session.Current(c).AddFlash(session.FlashSuccess, "New Review Created!")
	c.Redirect(http.StatusFound, "/listings/"+listingID)
}

// DeleteReview removes a review written by the current user.
func (h *Handler) DeleteReview(c *gin.Context) {
	listingID := c.Param("id")
	sess := session.Current(c)

	err := h.reviews.Delete(c.Request.Context(), currentUser(c).ID, listingID, c.Param("reviewId"))
	switch {
	case err == nil:
		sess.AddFlash(session.FlashSuccess, "Review Deleted!")
	case errors.Is(err, logicv1.ErrReviewNotFound):
		sess.AddFlash(session.FlashError, "Review you requested for does not exist!")
	case errors.Is(err, logicv1.ErrNotAuthor):
		sess.AddFlash(session.FlashError, "You are not the author of this review")
	default:
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusFound, "/listings/"+listingID)
}
