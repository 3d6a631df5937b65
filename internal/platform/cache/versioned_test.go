package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "orders", time.Minute), mr
}

func TestVersionedFetchUsesCacheUntilBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []string{"HB-Jan'25-01-000001"}, nil
	}

	key, err := c.BuildKey(ctx, "list")
	require.NoError(t, err)
	require.Equal(t, "orders:list:1", key)

	var out []string
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, calls)
	require.Equal(t, []string{"HB-Jan'25-01-000001"}, out)

	require.NoError(t, c.Bump(ctx))
	key, err = c.BuildKey(ctx, "list")
	require.NoError(t, err)
	require.Equal(t, "orders:list:2", key)
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, calls)
}

func TestVersionedLoaderErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "list")
	require.NoError(t, err)

	var out []string
	err = c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return nil, errors.New("store down")
	})
	require.EqualError(t, err, "store down")
	require.False(t, mr.Exists(key))
}

func TestVersionedNilClientCallsLoader(t *testing.T) {
	c := NewVersioned(nil, "orders", time.Minute)
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "list")
	require.NoError(t, err)
	require.Equal(t, "orders:list", key)

	var out int
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) { return 7, nil }))
	require.Equal(t, 7, out)
	require.NoError(t, c.Bump(ctx))
}

func TestBumpIsSeenByEveryClient(t *testing.T) {
	c, mr := newTestCache(t)
	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = other.Close() })
	peer := NewVersioned(other, "orders", time.Minute)
	ctx := context.Background()

	key, err := peer.BuildKey(ctx, "list")
	require.NoError(t, err)
	require.Equal(t, "orders:list:1", key)

	require.NoError(t, c.Bump(ctx))
	key, err = peer.BuildKey(ctx, "list")
	require.NoError(t, err)
	require.Equal(t, "orders:list:2", key)
	require.Equal(t, []string{"orders:version"}, mr.Keys())
}
