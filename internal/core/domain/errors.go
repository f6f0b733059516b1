package domain

import "errors"

// ErrDuplicateKey is returned by repositories when an insert violates a
// unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")
