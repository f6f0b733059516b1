package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/wanderlust/internal/core/domain"
	"github.com/duynhne/wanderlust/middleware"
)

// AuthService implements the local username/password strategy.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly. Session handling stays in
// the session package; this service only answers "who is this".
type AuthService struct {
	users      domain.UserRepository
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new AuthService. A bcryptCost outside bcrypt's
// valid range falls back to bcrypt.DefaultCost.
func NewAuthService(users domain.UserRepository, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Authenticate verifies a username/password pair.
func (s *AuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.authenticate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	row, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Username, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, invalidCredentials(ErrUserNotFound))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			span.RecordError(err)
		}
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrInvalidCredentials)
	}

	span.SetAttributes(
		attribute.String("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return row.Public(), nil
}

// Register creates an account with a bcrypt-hashed password.
// The caller is expected to log the new user in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	username := strings.TrimSpace(req.Username)

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", username, ErrUserExists)
	}

	// bcrypt only reads the first 72 bytes and refuses longer input.
	if len(req.Password) > MaxPasswordBytes {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", username, ErrPasswordTooLong)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := &domain.UserRow{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(passwordHash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, row); err != nil {
		// Lost a race against a concurrent signup for the same name.
		if errors.Is(err, domain.ErrDuplicateKey) {
			span.SetAttributes(attribute.Bool("registration.success", false))
			return nil, fmt.Errorf("register user %q: %w", username, ErrUserExists)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(
		attribute.String("user.id", row.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return row.Public(), nil
}

// DeserializeUser resolves the user ID stored in a session.
// Returns (nil, nil) when the account no longer exists.
func (s *AuthService) DeserializeUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, nil
	}
	row, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query user %q: %w", id, err)
	}
	if row == nil {
		return nil, nil
	}
	return row.Public(), nil
}
