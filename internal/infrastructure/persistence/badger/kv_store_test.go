package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

func TestKeyValueStore_InMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open("", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "userLikes")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "userLikes", []byte("[3,1]")))
	value, err := store.Get(ctx, "userLikes")
	require.NoError(t, err)
	assert.Equal(t, "[3,1]", string(value))

	require.NoError(t, store.Delete(ctx, "userLikes"))
	require.NoError(t, store.Delete(ctx, "userLikes"))
	_, err = store.Get(ctx, "userLikes")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)
}

func TestKeyValueStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := Open(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "userInfo", []byte(`{"id_user":9}`)))
	require.NoError(t, first.Close())

	second, err := Open(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get(ctx, "userInfo")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id_user":9}`, string(value))
}
