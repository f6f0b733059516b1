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

// ListingIndex renders every listing.
func (h *Handler) ListingIndex(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.render(c, http.StatusOK, "listings/index", gin.H{"listings": listings})
}

// NewListingForm renders an empty listing form.
func (h *Handler) NewListingForm(c *gin.Context) {
	h.render(c, http.StatusOK, "listings/new", gin.H{"listing": &domain.Listing{}})
}

// CreateListing stores a listing owned by the current user.
func (h *Handler) CreateListing(c *gin.Context) {
	var in domain.ListingInput
	if err := c.ShouldBind(&in); err != nil {
		_ = c.Error(middleware.NewAppError(http.StatusBadRequest, validationMessage(err)))
		return
	}

	if _, err := h.listings.Create(c.Request.Context(), currentUser(c).ID, in); err != nil {
		_ = c.Error(err)
		return
	}
	session.Current(c).AddFlash(session.FlashSuccess, "New Listing Created!")
	c.Redirect(http.StatusFound, "/listings")
}

// ShowListing renders a listing with its reviews.
func (h *Handler) ShowListing(c *gin.Context) {
	id := c.Param("id")
	detail, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		h.listingFailed(c, id, err)
		return
	}
	h.render(c, http.StatusOK, "listings/show", gin.H{
		"listing": detail.Listing,
		"reviews": detail.Reviews,
	})
}

// EditListingForm renders the edit form to the listing's owner.
func (h *Handler) EditListingForm(c *gin.Context) {
	id := c.Param("id")
	listing, err := h.listings.GetOwned(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.listingFailed(c, id, err)
		return
	}
	h.render(c, http.StatusOK, "listings/edit", gin.H{"listing": listing})
}

// UpdateListing applies the edit form.
func (h *Handler) UpdateListing(c *gin.Context) {
	id := c.Param("id")

	var in domain.ListingInput
	if err := c.ShouldBind(&in); err != nil {
		_ = c.Error(middleware.NewAppError(http.StatusBadRequest, validationMessage(err)))
		return
	}

	if _, err := h.listings.Update(c.Request.Context(), currentUser(c).ID, id, in); err != nil {
		h.listingFailed(c, id, err)
		return
	}
	session.Current(c).AddFlash(session.FlashSuccess, "Listing Updated!")
	c.Redirect(http.StatusFound, "/listings/"+id)
}

// DeleteListing removes the listing and its reviews.
func (h *Handler) DeleteListing(c *gin.Context) {
	id := c.Param("id")
	if err := h.listings.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		h.listingFailed(c, id, err)
		return
	}
	session.Current(c).AddFlash(session.FlashSuccess, "Listing Deleted!")
	c.Redirect(http.StatusFound, "/listings")
}

// listingFailed turns expected listing errors into a flash and redirect.
// Anything else goes to the error pipeline.
func (h *Handler) listingFailed(c *gin.Context, id string, err error) {
	sess := session.Current(c)
	switch {
	case errors.Is(err, logicv1.ErrListingNotFound):
		sess.AddFlash(session.FlashError, "Listing you requested for does not exist!")
		c.Redirect(http.StatusFound, "/listings")
	case errors.Is(err, logicv1.ErrNotOwner):
		sess.AddFlash(session.FlashError, "You are not the owner of this listing")
		c.Redirect(http.StatusFound, "/listings/"+id)
	default:
		_ = c.Error(err)
	}
}
