package v1

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/wanderlust/internal/core/domain"
	"github.com/duynhne/wanderlust/middleware"
)

// ListingDetail is a listing with its reviews.
type ListingDetail struct {
	Listing *domain.Listing
	Reviews []domain.Review
}

// ListingService implements listing CRUD with ownership checks.
type ListingService struct {
	listings domain.ListingRepository
	reviews  domain.ReviewRepository
	now      func() time.Time
}

// NewListingService creates a new ListingService.
func NewListingService(listings domain.ListingRepository, reviews domain.ReviewRepository) *ListingService {
	return &ListingService{listings: listings, reviews: reviews, now: time.Now}
}

// List returns every listing.
func (s *ListingService) List(ctx context.Context) ([]domain.Listing, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	listings, err := s.listings.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// Get returns a listing and its reviews.
func (s *ListingService) Get(ctx context.Context, id string) (*ListingDetail, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("listing.id", id),
	))
	defer span.End()

	l, err := s.find(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	reviews, err := s.reviews.ListByListing(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list reviews of %q: %w", id, err)
	}
	return &ListingDetail{Listing: l, Reviews: reviews}, nil
}

// GetOwned returns a listing only if ownerID owns it.
func (s *ListingService) GetOwned(ctx context.Context, ownerID, id string) (*domain.Listing, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != ownerID {
		return nil, fmt.Errorf("listing %q: %w", id, ErrNotOwner)
	}
	return l, nil
}

// Create stores a new listing owned by ownerID.
func (s *ListingService) Create(ctx context.Context, ownerID string, in domain.ListingInput) (*domain.Listing, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", ownerID),
	))
	defer span.End()

	l := &domain.Listing{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC(),
	}
	applyListingInput(l, in)

	if err := s.listings.Create(ctx, l); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	span.SetAttributes(attribute.String("listing.id", l.ID))
	return l, nil
}

// Update edits a listing owned by ownerID.
func (s *ListingService) Update(ctx context.Context, ownerID, id string, in domain.ListingInput) (*domain.Listing, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("listing.id", id),
	))
	defer span.End()

	l, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	applyListingInput(l, in)

	if err := s.listings.Update(ctx, l); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update listing %q: %w", id, err)
	}
	return l, nil
}

// Delete removes a listing owned by ownerID, with its reviews.
func (s *ListingService) Delete(ctx context.Context, ownerID, id string) error {
	ctx, span := middleware.StartSpan(ctx, "listings.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("listing.id", id),
	))
	defer span.End()

	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete listing %q: %w", id, err)
	}
	return nil
}

func (s *ListingService) find(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query listing %q: %w", id, err)
	}
	if l == nil {
		return nil, fmt.Errorf("listing %q: %w", id, ErrListingNotFound)
	}
	return l, nil
}

func applyListingInput(l *domain.Listing, in domain.ListingInput) {
	l.Title = strings.TrimSpace(in.Title)
	l.Description = strings.TrimSpace(in.Description)
	l.ImageURL = strings.TrimSpace(in.ImageURL)
	l.Price = in.Price
	l.Location = strings.TrimSpace(in.Location)
	l.Country = strings.TrimSpace(in.Country)
}
