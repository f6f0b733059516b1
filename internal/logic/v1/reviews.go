package v1

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/duynhne/wanderlust/internal/core/domain"
)

// ReviewService implements review creation and author-only deletion.
type ReviewService struct {
	listings domain.ListingRepository
	reviews  domain.ReviewRepository
	now      func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(listings domain.ListingRepository, reviews domain.ReviewRepository) *ReviewService {
	return &ReviewService{listings: listings, reviews: reviews, now: time.Now}
}

// Create adds a review by authorID to a listing.
func (s *ReviewService) Create(ctx context.Context, authorID, listingID string, in domain.ReviewInput) (*domain.Review, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("query listing %q: %w", listingID, err)
	}
	if l == nil {
		return nil, fmt.Errorf("listing %q: %w", listingID, ErrListingNotFound)
	}

	r := &domain.Review{
		ID:        uuid.NewString(),
		ListingID: listingID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		AuthorID:  authorID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return r, nil
}

// Delete removes a review written by authorID.
func (s *ReviewService) Delete(ctx context.Context, authorID, listingID, reviewID string) error {
	r, err := s.reviews.GetByID(ctx, listingID, reviewID)
	if err != nil {
		return fmt.Errorf("query review %q: %w", reviewID, err)
	}
	if r == nil {
		return fmt.Errorf("review %q: %w", reviewID, ErrReviewNotFound)
	}
	if r.AuthorID != authorID {
		return fmt.Errorf("review %q: %w", reviewID, ErrNotAuthor)
	}
	if err := s.reviews.Delete(ctx, listingID, reviewID); err != nil {
		return fmt.Errorf("delete review %q: %w", reviewID, err)
	}
	return nil
}
