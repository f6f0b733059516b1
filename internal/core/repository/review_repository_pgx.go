package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/wanderlust/internal/core/domain"
)

// PgxReviewRepository implements domain.ReviewRepository using pgxpool.
type PgxReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new PgxReviewRepository.
func NewReviewRepository(pool *pgxpool.Pool) *PgxReviewRepository {
	return &PgxReviewRepository{pool: pool}
}

// ListByListing returns the reviews of a listing, oldest first.
func (r *PgxReviewRepository) ListByListing(ctx context.Context, listingID string) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.listing_id, r.rating, r.comment, r.author_id, u.username, r.created_at
		FROM reviews r JOIN users u ON u.id = r.author_id
		WHERE r.listing_id = $1
		ORDER BY r.created_at
	`
	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Review, error) {
		var rv domain.Review
		err := row.Scan(&rv.ID, &rv.ListingID, &rv.Rating, &rv.Comment, &rv.AuthorID, &rv.AuthorName, &rv.CreatedAt)
		return rv, err
	})
}

// GetByID returns the review with the given ID inside the given listing.
// Returns (nil, nil) when no such review exists.
func (r *PgxReviewRepository) GetByID(ctx context.Context, listingID, id string) (*domain.Review, error) {
	query := `
		SELECT r.id, r.listing_id, r.rating, r.comment, r.author_id, u.username, r.created_at
		FROM reviews r JOIN users u ON u.id = r.author_id
		WHERE r.listing_id = $1 AND r.id = $2
	`
	var rv domain.Review
	err := r.pool.QueryRow(ctx, query, listingID, id).Scan(
		&rv.ID, &rv.ListingID, &rv.Rating, &rv.Comment, &rv.AuthorID, &rv.AuthorName, &rv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &rv, nil
}

// Create inserts a new review.
func (r *PgxReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, listing_id, rating, comment, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, rv.ID, rv.ListingID, rv.Rating, rv.Comment, rv.AuthorID, rv.CreatedAt)
	return err
}

// Delete removes a review from a listing.
func (r *PgxReviewRepository) Delete(ctx context.Context, listingID, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE listing_id = $1 AND id = $2`, listingID, id)
	return err
}
