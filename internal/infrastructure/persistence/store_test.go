package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
)

func TestOpenKeyValueStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.StorageConfig
	}{
		{name: "sqlite file", cfg: config.StorageConfig{Driver: DriverSQLite, Path: filepath.Join(dir, "kv.db")}},
		{name: "sqlite in memory", cfg: config.StorageConfig{Driver: DriverSQLite}},
		{name: "badger", cfg: config.StorageConfig{Driver: DriverBadger, Path: filepath.Join(dir, "badger")}},
		{name: "memory", cfg: config.StorageConfig{Driver: DriverMemory}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, err := OpenKeyValueStore(ctx, &tt.cfg, zaptest.NewLogger(t))
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Set(ctx, "userToken", []byte("5")))
			value, err := store.Get(ctx, "userToken")
			require.NoError(t, err)
			assert.Equal(t, "5", string(value))
		})
	}
}

func TestOpenKeyValueStore_UnknownDriver(t *testing.T) {
	_, err := OpenKeyValueStore(context.Background(), &config.StorageConfig{Driver: "etcd"}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "unknown storage driver")
}
