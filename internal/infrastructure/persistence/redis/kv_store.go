// Package redis provides a key-value store on Redis, used for shared
// development profiles and integration tests
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

// KeyValueStore implements outbound.KeyValueStore with plain string keys.
// Entries never expire; logout removes them explicitly.
type KeyValueStore struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewClient creates a Redis client from configuration and verifies the connection
func NewClient(ctx context.Context, cfg *config.RedisConfig) (redis.UniversalClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewKeyValueStore wraps a Redis client. prefix namespaces every key.
func NewKeyValueStore(client redis.UniversalClient, prefix string, logger *zap.Logger) *KeyValueStore {
	return &KeyValueStore{
		client: client,
		prefix: prefix,
		logger: logger.Named("redis-store"),
	}
}

var _ outbound.KeyValueStore = (*KeyValueStore)(nil)

// Get returns the stored value
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, outbound.ErrKeyNotFound
	}
	if err != nil {
		s.logger.Debug("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key without expiry
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		s.logger.Error("Redis set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.logger.Error("Redis delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the client
func (s *KeyValueStore) Close() error {
	return s.client.Close()
}
