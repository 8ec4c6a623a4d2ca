package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

func TestKeyValueStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewKeyValueStore()

	_, err := store.Get(ctx, "userToken")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "userToken", []byte("42")))
	value, err := store.Get(ctx, "userToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), value)

	require.NoError(t, store.Set(ctx, "userToken", []byte("43")))
	value, err = store.Get(ctx, "userToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("43"), value)

	require.NoError(t, store.Delete(ctx, "userToken"))
	require.NoError(t, store.Delete(ctx, "userToken"))
	_, err = store.Get(ctx, "userToken")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)
}

func TestKeyValueStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewKeyValueStore()

	value := []byte("[1,2]")
	require.NoError(t, store.Set(ctx, "userLikes", value))
	value[1] = '9'

	stored, err := store.Get(ctx, "userLikes")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(stored))

	stored[1] = '7'
	again, err := store.Get(ctx, "userLikes")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(again))
}

func TestKeyValueStore_SetHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewKeyValueStore()
	assert.ErrorIs(t, store.Set(ctx, "userInfo", []byte("{}")), context.Canceled)
	assert.Empty(t, store.Keys())
}

func TestKeyValueStore_Close(t *testing.T) {
	ctx := context.Background()
	store := NewKeyValueStore()
	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Close())
	assert.Empty(t, store.Keys())
}
