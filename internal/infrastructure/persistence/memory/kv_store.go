// Package memory provides an in-process key-value store
package memory

import (
	"context"
	"sync"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

// KeyValueStore keeps entries in a map. Nothing survives the process; it
// backs tests and the CLI's --ephemeral mode.
type KeyValueStore struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewKeyValueStore creates an empty in-memory store
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		data: make(map[string][]byte),
	}
}

var _ outbound.KeyValueStore = (*KeyValueStore)(nil)

// Get returns a copy of the stored value
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return nil, outbound.ErrKeyNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = stored
	return nil
}

// Delete removes key
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// Keys returns the stored keys in no particular order
func (s *KeyValueStore) Keys() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Close drops every entry
func (s *KeyValueStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data = make(map[string][]byte)
	return nil
}
