package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value primitive the engines run on: point
// lookup, point write and prefix scan over opaque string keys. There are
// no transactions; callers that need read-modify-write atomicity serialize
// access themselves.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// GetByPrefix returns the values of every key starting with prefix,
	// in ascending key order.
	GetByPrefix(ctx context.Context, prefix string) ([][]byte, error)
}
