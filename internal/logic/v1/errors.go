// Package v1 holds the business rules of Wanderlust: local-strategy
// authentication, listings and reviews.
//
// Error Handling:
// This package defines sentinel errors for expected failures. They are
// wrapped with context using fmt.Errorf("%w") when returned and classified
// by handlers with errors.Is:
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    sess.AddFlash(session.FlashError, "Password or username is incorrect")
//	    c.Redirect(http.StatusFound, "/login")
//	case errors.Is(err, logicv1.ErrUserExists):
//	    sess.AddFlash(session.FlashError, "A user with the given username is already registered")
//	    c.Redirect(http.StatusFound, "/signup")
//	default:
//	    _ = c.Error(err)
//	}
package v1

import "errors"

// Sentinel errors for business operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the username/password pair does not
	// match an account. Unknown usernames are reported the same way.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist in the system.
	// It is always accompanied by ErrInvalidCredentials on login.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the username is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrPasswordTooLong indicates the password exceeds MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrListingNotFound indicates the listing does not exist.
	ErrListingNotFound = errors.New("listing not found")

	// ErrReviewNotFound indicates the review does not exist on the listing.
	ErrReviewNotFound = errors.New("review not found")

	// ErrNotOwner indicates the user tried to change a listing they do not own.
	ErrNotOwner = errors.New("not the owner of this listing")

	// ErrNotAuthor indicates the user tried to delete a review they did not write.
	ErrNotAuthor = errors.New("not the author of this review")
)

// MaxPasswordBytes is the longest password bcrypt accepts, in bytes.
const MaxPasswordBytes = 72

// invalidCredentials joins ErrInvalidCredentials with a more specific cause.
func invalidCredentials(cause error) error {
	return errors.Join(ErrInvalidCredentials, cause)
}
