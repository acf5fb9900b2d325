package callflow

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisSessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisSessionStore(rdb)
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	sess := NewSession("call-1", "+56911111111", "+56222222222")
	sess.Phase = PhaseConfirmID
	sess.IDBody = "12345678"
	sess.IDCheckDigit = "5"
	sess.Attempts[PhaseWaitForID] = 2

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "call-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, PhaseConfirmID, got.Phase)
	assert.Equal(t, "12345678", got.IDBody)
	assert.Equal(t, 2, got.Attempt(PhaseWaitForID))
}

func TestRedisSessionStoreMissingIsNil(t *testing.T) {
	store := newRedisStore(t)

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSessionStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	sess := NewSession("call-2", "", "")
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Delete(ctx, "call-2"))

	got, err := store.Get(ctx, "call-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSessionStoreRejectsEmptyID(t *testing.T) {
	store := newRedisStore(t)
	assert.Error(t, store.Save(context.Background(), &Session{}))
}
