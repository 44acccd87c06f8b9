package storage

import "errors"

// ErrUnavailable is returned when the underlying persistence mechanism
// cannot be opened at all. Fatal to the application; never retried.
var ErrUnavailable = errors.New("storage unavailable")

// ErrDuplicateKey is returned by Add when the record's key already exists.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrNotFound is returned by callers layered on the store when an entity
// that must exist does not. The store itself reports absence as (nil, nil).
var ErrNotFound = errors.New("not found")
