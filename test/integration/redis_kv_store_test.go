//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/recipebook/internal/application/session"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence"
	redisstore "github.com/alchemorsel/recipebook/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/test/testutils"
)

func TestRedisKeyValueStore(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	tr := testutils.SetupTestRedis(t)

	client, err := redisstore.NewClient(ctx, &tr.Config)
	require.NoError(t, err)
	store := redisstore.NewKeyValueStore(client, tr.Config.KeyPrefix, logger)
	defer store.Close()

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "userToken", []byte("42")))
	got, err := store.Get(ctx, "userToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), got)

	require.NoError(t, store.Set(ctx, "userToken", []byte("43")))
	got, err = store.Get(ctx, "userToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("43"), got)

	require.NoError(t, store.Delete(ctx, "userToken"))
	require.NoError(t, store.Delete(ctx, "userToken"))
	_, err = store.Get(ctx, "userToken")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)
}

func TestRedisSessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	tr := testutils.SetupTestRedis(t)

	cfg := &config.StorageConfig{Driver: persistence.DriverRedis, Redis: tr.Config}

	kv, err := persistence.OpenKeyValueStore(ctx, cfg, logger)
	require.NoError(t, err)
	_, err = session.NewStore(kv, nil, logger).Login(ctx, user.Info{IDUser: 9, Username: "chef"}, testutils.IDs(4, 2))
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	kv, err = persistence.OpenKeyValueStore(ctx, cfg, logger)
	require.NoError(t, err)
	defer kv.Close()

	snap := session.NewStore(kv, nil, logger).Restore(ctx)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, user.ID(9), snap.UserID)
	assert.Equal(t, "chef", snap.Info.Username)
	assert.Equal(t, testutils.IDs(4, 2), snap.Likes.IDs())
}
