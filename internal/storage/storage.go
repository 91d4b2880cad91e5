// Package storage persists client-side state (credential pairs, the cart
// snapshot) in a key-value store that survives restarts.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is the key-value contract every backend implements. Delete of a
// missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
