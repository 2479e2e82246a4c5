// Package cache holds transcoded images between processing and upload.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned for handles that were never issued or were already removed.
var ErrNotFound = errors.New("image not found in cache")

// Handle is an opaque key minted when bytes enter the cache. Handles are
// UUIDv4 strings and are never reused.
type Handle = string

// Store is the buffer cache contract. Implementations must make every call
// safe for concurrent use and must never hand out memory they still own.
type Store interface {
	// Put stores a copy of data and returns a fresh handle.
	Put(ctx context.Context, data []byte) (Handle, error)
	// Get returns a copy of the bytes for h, or ErrNotFound.
	Get(ctx context.Context, h Handle) ([]byte, error)
	// Delete removes h. Deleting an unknown handle is not an error.
	Delete(ctx context.Context, h Handle) error
	// Len reports the number of live entries.
	Len(ctx context.Context) (int, error)
}
