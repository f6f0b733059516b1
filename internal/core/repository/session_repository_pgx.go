package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/wanderlust/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
// Sessions live in the same database as application data.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Get returns the session with the given ID if it has not expired at now.
// Returns (nil, nil) when the session is missing or expired.
func (r *PgxSessionRepository) Get(ctx context.Context, id string, now time.Time) (*domain.SessionRecord, error) {
	query := `SELECT id, data, expires_at, updated_at FROM sessions WHERE id = $1 AND expires_at > $2`

	var rec domain.SessionRecord
	err := r.pool.QueryRow(ctx, query, id, now).Scan(
		&rec.ID, &rec.Data, &rec.ExpiresAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &rec, nil
}

// Upsert inserts or replaces the session.
func (r *PgxSessionRepository) Upsert(ctx context.Context, rec *domain.SessionRecord) error {
	query := `
		INSERT INTO sessions (id, data, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, rec.ID, rec.Data, rec.ExpiresAt, rec.UpdatedAt)
	return err
}

// Touch moves the expiry of an existing session without rewriting its data.
func (r *PgxSessionRepository) Touch(ctx context.Context, id string, expiresAt, updatedAt time.Time) error {
	query := `UPDATE sessions SET expires_at = $2, updated_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, expiresAt, updatedAt)
	return err
}

// Delete removes the session.
func (r *PgxSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes every session that expired before now.
func (r *PgxSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
