package domain

import (
	"context"
	"time"
)

// User is the public view of an account, safe to hand to templates.
type User struct {
	ID       string
	Username string
	Email    string
}

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Public strips the credential from the row.
func (r *UserRow) Public() *User {
	return &User{ID: r.ID, Username: r.Username, Email: r.Email}
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// GetByUsername returns the user matching the given username.
	// Returns (nil, nil) when no user is found.
	GetByUsername(ctx context.Context, username string) (*UserRow, error)

	// GetByID returns the user with the given ID.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id string) (*UserRow, error)

	// Create inserts a new user. It returns ErrDuplicateKey when the
	// username is already taken.
	Create(ctx context.Context, row *UserRow) error
}
