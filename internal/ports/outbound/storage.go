// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the personalization core uses to reach storage and the network
package outbound

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for an absent key
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable key-value storage the session survives
// restarts in. Values are serialized text. Implementations must be safe for
// concurrent use; they give no ordering guarantee between calls issued from
// different goroutines.
type KeyValueStore interface {
	// Get returns the stored value or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying storage
	Close() error
}
