package domain

import (
	"context"
	"time"
)

// Listing is a place offered for stay.
type Listing struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Price       int
	Location    string
	Country     string
	OwnerID     string
	OwnerName   string
	CreatedAt   time.Time
}

// ListingRepository defines the data-access contract for listings.
type ListingRepository interface {
	// List returns all listings, newest first.
	List(ctx context.Context) ([]Listing, error)

	// GetByID returns the listing with the given ID, joined with its owner's
	// username. Returns (nil, nil) when no listing is found.
	GetByID(ctx context.Context, id string) (*Listing, error)

	// Create inserts a new listing.
	Create(ctx context.Context, l *Listing) error

	// Update overwrites the editable fields of an existing listing.
	Update(ctx context.Context, l *Listing) error

	// Delete removes the listing together with its reviews.
	Delete(ctx context.Context, id string) error
}
