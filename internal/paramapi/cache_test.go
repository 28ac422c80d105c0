package paramapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCache_GetConfig(t *testing.T) {
	client, srv := newTestClient(t)
	cache := NewSchemaCache(client, 8, time.Minute)
	ctx := context.Background()

	first, err := cache.GetConfig(ctx, "turning-rough")
	require.NoError(t, err)
	second, err := cache.GetConfig(ctx, "turning-rough")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, srv.Calls("config"))
	assert.Equal(t, 1, cache.Len())
}

func TestSchemaCache_PerPackage(t *testing.T) {
	client, srv := newTestClient(t)
	require.NoError(t, srv.AddPackageJSON("milling", `{"groups": {}}`))
	cache := NewSchemaCache(client, 1, time.Minute)
	ctx := context.Background()

	_, err := cache.GetConfig(ctx, "turning-rough")
	require.NoError(t, err)
	_, err = cache.GetConfig(ctx, "milling")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	// size 1 evicted turning-rough
	_, err = cache.GetConfig(ctx, "turning-rough")
	require.NoError(t, err)
	assert.Equal(t, 3, srv.Calls("config"))
}

func TestSchemaCache_DoesNotCacheFailures(t *testing.T) {
	client, srv := newTestClient(t)
	cache := NewSchemaCache(client, 8, time.Minute)
	ctx := context.Background()

	srv.Fail("config", "schema store offline")
	_, err := cache.GetConfig(ctx, "turning-rough")
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	srv.Fail("config", "")
	_, err = cache.GetConfig(ctx, "turning-rough")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestSchemaCache_Expiry(t *testing.T) {
	client, srv := newTestClient(t)
	cache := NewSchemaCache(client, 8, 20*time.Millisecond)
	ctx := context.Background()

	_, err := cache.GetConfig(ctx, "turning-rough")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 10*time.Millisecond)

	_, err = cache.GetConfig(ctx, "turning-rough")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Calls("config"))
}
