// Package memory provides in-memory repositories for tests and local
// experiments. A single Store backs all four repository views so joins such
// as listing owner names behave like the PostgreSQL implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/duynhne/wanderlust/internal/core/domain"
)

// Store holds every table in maps guarded by one lock.
type Store struct {
	mu sync.RWMutex

	users    map[string]*domain.UserRow
	sessions map[string]*domain.SessionRecord
	listings map[string]*domain.Listing
	reviews  map[string]*domain.Review
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]*domain.UserRow),
		sessions: make(map[string]*domain.SessionRecord),
		listings: make(map[string]*domain.Listing),
		reviews:  make(map[string]*domain.Review),
	}
}

// Users returns the user repository view.
func (s *Store) Users() *UserRepository { return &UserRepository{s} }

// Sessions returns the session repository view.
func (s *Store) Sessions() *SessionRepository { return &SessionRepository{s} }

// Listings returns the listing repository view.
func (s *Store) Listings() *ListingRepository { return &ListingRepository{s} }

// Reviews returns the review repository view.
func (s *Store) Reviews() *ReviewRepository { return &ReviewRepository{s} }

// SessionCount reports how many session records are stored, expired or not.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SessionRecord returns a copy of the raw record, ignoring expiry.
func (s *Store) SessionRecord(id string) (domain.SessionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return domain.SessionRecord{}, false
	}
	return *rec, true
}

func (s *Store) username(id string) string {
	if u, ok := s.users[id]; ok {
		return u.Username
	}
	return ""
}

// UserRepository implements domain.UserRepository.
type UserRepository struct{ s *Store }

// GetByUsername returns the user matching the given username.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.UserRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID returns the user with the given ID.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.UserRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(_ context.Context, row *domain.UserRow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == row.Username {
			return domain.ErrDuplicateKey
		}
	}
	cp := *row
	r.s.users[row.ID] = &cp
	return nil
}

// Delete removes a user. Only tests need this; the application never
// deletes accounts.
func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// SessionRepository implements domain.SessionRepository.
type SessionRepository struct{ s *Store }

// Get returns the session if it has not expired at now.
func (r *SessionRepository) Get(_ context.Context, id string, now time.Time) (*domain.SessionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.sessions[id]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, nil
	}
	cp := *rec
	cp.Data = append([]byte(nil), rec.Data...)
	return &cp, nil
}

// Upsert inserts or replaces the session.
func (r *SessionRepository) Upsert(_ context.Context, rec *domain.SessionRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	cp.Data = append([]byte(nil), rec.Data...)
	r.s.sessions[rec.ID] = &cp
	return nil
}

// Touch moves the expiry of an existing session.
func (r *SessionRepository) Touch(_ context.Context, id string, expiresAt, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.sessions[id]; ok {
		rec.ExpiresAt = expiresAt
		rec.UpdatedAt = updatedAt
	}
	return nil
}

// Delete removes the session.
func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

// DeleteExpired removes sessions that expired before now.
func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, rec := range r.s.sessions {
		if !rec.ExpiresAt.After(now) {
			delete(r.s.sessions, id)
			count++
		}
	}
	return count, nil
}

// ListingRepository implements domain.ListingRepository.
type ListingRepository struct{ s *Store }

// List returns all listings, newest first.
func (r *ListingRepository) List(_ context.Context) ([]domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Listing, 0, len(r.s.listings))
	for _, l := range r.s.listings {
		cp := *l
		cp.OwnerName = r.s.username(l.OwnerID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetByID returns the listing with the given ID.
func (r *ListingRepository) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	cp.OwnerName = r.s.username(l.OwnerID)
	return &cp, nil
}

// Create inserts a new listing.
func (r *ListingRepository) Create(_ context.Context, l *domain.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *l
	r.s.listings[l.ID] = &cp
	return nil
}

// Update overwrites the editable fields of an existing listing.
func (r *ListingRepository) Update(_ context.Context, l *domain.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.listings[l.ID]
	if !ok {
		return nil
	}
	cur.Title = l.Title
	cur.Description = l.Description
	cur.ImageURL = l.ImageURL
	cur.Price = l.Price
	cur.Location = l.Location
	cur.Country = l.Country
	return nil
}

// Delete removes the listing and its reviews.
func (r *ListingRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.listings, id)
	for rid, rv := range r.s.reviews {
		if rv.ListingID == id {
			delete(r.s.reviews, rid)
		}
	}
	return nil
}

// ReviewRepository implements domain.ReviewRepository.
type ReviewRepository struct{ s *Store }

// ListByListing returns the reviews of a listing, oldest first.
func (r *ReviewRepository) ListByListing(_ context.Context, listingID string) ([]domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Review
	for _, rv := range r.s.reviews {
		if rv.ListingID == listingID {
			cp := *rv
			cp.AuthorName = r.s.username(rv.AuthorID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GetByID returns the review with the given ID inside the given listing.
func (r *ReviewRepository) GetByID(_ context.Context, listingID, id string) (*domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok || rv.ListingID != listingID {
		return nil, nil
	}
	cp := *rv
	cp.AuthorName = r.s.username(rv.AuthorID)
	return &cp, nil
}

// Create inserts a new review.
func (r *ReviewRepository) Create(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rv
	r.s.reviews[rv.ID] = &cp
	return nil
}

// Delete removes a review from a listing.
func (r *ReviewRepository) Delete(_ context.Context, listingID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rv, ok := r.s.reviews[id]; ok && rv.ListingID == listingID {
		delete(r.s.reviews, id)
	}
	return nil
}

var (
	_ domain.UserRepository    = (*UserRepository)(nil)
	_ domain.SessionRepository = (*SessionRepository)(nil)
	_ domain.ListingRepository = (*ListingRepository)(nil)
	_ domain.ReviewRepository  = (*ReviewRepository)(nil)
)
