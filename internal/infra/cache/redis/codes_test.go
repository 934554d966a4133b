package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourhub/internal/domain/verification"
)

func TestCodeStoreExpiry(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewCodeStore(client)
	ctx := context.Background()
	key := verification.EmailKey("Ana@Example.com")

	require.NoError(t, store.Put(ctx, key, "123456", 10*time.Minute))
	code, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, 10*time.Minute, srv.TTL(key))

	require.NoError(t, verification.Check(ctx, store, key, "123456"))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, verification.ErrCodeNotFound)

	require.NoError(t, store.Put(ctx, key, "654321", time.Minute))
	srv.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, verification.ErrCodeNotFound)
}

func TestNewClientPings(t *testing.T) {
	srv := miniredis.RunT(t)
	client, err := NewClient(context.Background(), srv.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
