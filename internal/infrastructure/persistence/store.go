// Package persistence selects the durable key-value store the session lives in
package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/badger"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// OpenKeyValueStore opens the store selected by cfg.Driver
func OpenKeyValueStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (outbound.KeyValueStore, error) {
	logger.Debug("Opening key-value store",
		zap.String("driver", cfg.Driver),
		zap.String("path", cfg.Path),
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		db, err := sqlite.SetupDatabase(cfg.Path, gormlogger.Silent)
		if err != nil {
			return nil, err
		}
		return sqlite.NewKeyValueStore(db, logger), nil

	case DriverBadger:
		store, err := badger.Open(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case DriverRedis:
		client, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redis.NewKeyValueStore(client, cfg.Redis.KeyPrefix, logger), nil

	case DriverMemory:
		return memory.NewKeyValueStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
