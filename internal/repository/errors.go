package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when an insert violates a uniqueness
	// constraint. Implementations must map their store's conflict signal
	// to this error so concurrent duplicate inserts stay distinguishable
	// from generic store failures.
	ErrAlreadyExists = errors.New("record already exists")
)
