package domain

import (
	"context"
	"time"
)

// Review is a rating left on a listing.
type Review struct {
	ID         string
	ListingID  string
	Rating     int
	Comment    string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
}

// ReviewRepository defines the data-access contract for reviews.
type ReviewRepository interface {
	// ListByListing returns the reviews of a listing, oldest first.
	ListByListing(ctx context.Context, listingID string) ([]Review, error)

	// GetByID returns the review with the given ID inside the given listing.
	// Returns (nil, nil) when no such review exists.
	GetByID(ctx context.Context, listingID, id string) (*Review, error)

	// Create inserts a new review.
	Create(ctx context.Context, r *Review) error

	// Delete removes a review from a listing.
	Delete(ctx context.Context, listingID, id string) error
}
