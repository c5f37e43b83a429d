package store

import "errors"

// Sentinel errors. Any other error returned by the store is a storage
// fault: fatal to the operation in progress and surfaced to the caller.
var (
	ErrBookNotFound = errors.New("book not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)
