// Package badger provides a key-value store on an embedded BadgerDB
package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

const keyPrefix = "recipebook:"

// KeyValueStore implements outbound.KeyValueStore on BadgerDB
type KeyValueStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens (or creates) a Badger database at path. An empty path opens an
// in-memory database.
func Open(path string, logger *zap.Logger) (*KeyValueStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return NewKeyValueStore(db, logger), nil
}

// NewKeyValueStore wraps an open Badger database
func NewKeyValueStore(db *badger.DB, logger *zap.Logger) *KeyValueStore {
	return &KeyValueStore{
		db:     db,
		logger: logger.Named("badger-store"),
	}
}

var _ outbound.KeyValueStore = (*KeyValueStore)(nil)

// Get returns the stored value
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return outbound.ErrKeyNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyPrefix+key), value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes key
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(keyPrefix + key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// Close flushes and closes the database
func (s *KeyValueStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("Failed to close badger", zap.Error(err))
		return err
	}
	return nil
}
