package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned by Set when the backend refuses the write
	// for capacity reasons. The store's degradation ladder keys off this.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KeyValueStore is the persistence substrate for the single state document.
// Backends: memory, mysql, redis.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}
