package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/wanderlust/internal/core/domain"
)

const listingColumns = `
	l.id, l.title, l.description, l.image_url, l.price, l.location, l.country,
	l.owner_id, u.username, l.created_at
`

// PgxListingRepository implements domain.ListingRepository using pgxpool.
type PgxListingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository creates a new PgxListingRepository.
func NewListingRepository(pool *pgxpool.Pool) *PgxListingRepository {
	return &PgxListingRepository{pool: pool}
}

// List returns all listings, newest first.
func (r *PgxListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings l JOIN users u ON u.id = l.owner_id
		ORDER BY l.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Listing, error) {
		var l domain.Listing
		err := row.Scan(
			&l.ID, &l.Title, &l.Description, &l.ImageURL, &l.Price, &l.Location, &l.Country,
			&l.OwnerID, &l.OwnerName, &l.CreatedAt,
		)
		return l, err
	})
}

// GetByID returns the listing with the given ID.
// Returns (nil, nil) when no listing is found.
func (r *PgxListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings l JOIN users u ON u.id = l.owner_id
		WHERE l.id = $1`

	var l domain.Listing
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Title, &l.Description, &l.ImageURL, &l.Price, &l.Location, &l.Country,
		&l.OwnerID, &l.OwnerName, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &l, nil
}

// Create inserts a new listing.
func (r *PgxListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	query := `
		INSERT INTO listings (id, title, description, image_url, price, location, country, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		l.ID, l.Title, l.Description, l.ImageURL, l.Price, l.Location, l.Country, l.OwnerID, l.CreatedAt,
	)
	return err
}

// Update overwrites the editable fields of an existing listing.
func (r *PgxListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, image_url = $4, price = $5, location = $6, country = $7
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, l.ID, l.Title, l.Description, l.ImageURL, l.Price, l.Location, l.Country)
	return err
}

// Delete removes the listing. Reviews go with it through ON DELETE CASCADE.
func (r *PgxListingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	return err
}
