package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/testutil"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *session.RedisStore) {
	t.Helper()
	mr, client := testutil.NewRedis(t)
	return mr, session.NewRedisStore(client)
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()
	want := session.Data{
		UserID:  "6f1c3c1e-0000-4000-8000-000000000001",
		Flashes: []session.Flash{{Level: session.LevelSuccess, Message: "Saved."}},
	}

	require.NoError(t, store.Save(ctx, "abc", want, time.Hour))
	got, err := store.Load(ctx, "abc")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStore_SetsTTL(t *testing.T) {
	mr, store := setupTestRedis(t)

	require.NoError(t, store.Save(context.Background(), "abc", session.Data{}, 2*time.Hour))

	assert.Equal(t, 2*time.Hour, mr.TTL("session:abc"))
}

func TestRedisStore_Expired(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "abc", session.Data{UserID: "x"}, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRedisStore_Delete(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "abc", session.Data{}, time.Minute))

	require.NoError(t, store.Delete(ctx, "abc"))

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, store := setupTestRedis(t)
	require.NoError(t, mr.Set("session:abc", "{not json"))

	_, err := store.Load(context.Background(), "abc")

	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNoSession)
}
