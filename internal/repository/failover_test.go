package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverOTPStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	logger := zerolog.Nop()
	primary := NewRedisOTPStore(client)
	fallback := NewMemoryOTPStore()
	store := NewFailoverOTPStore(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimaryServes", func(t *testing.T) {
		require.NoError(t, store.SaveCode(ctx, "+79990000001", "123456", time.Minute))

		code, _, err := store.GetCode(ctx, "+79990000001")
		require.NoError(t, err)
		assert.Equal(t, "123456", code)

		// The code really lives in redis, not in the fallback
		_, _, err = fallback.GetCode(ctx, "+79990000001")
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("NotFoundDoesNotTripFailover", func(t *testing.T) {
		_, _, err := store.GetCode(ctx, "+79990008888")
		assert.ErrorIs(t, err, ErrCodeNotFound)
		assert.False(t, store.isDown.Load())
	})

	t.Run("FallsBackWhenPrimaryDies", func(t *testing.T) {
		s.SetError("connection refused")
		defer s.SetError("")

		require.NoError(t, store.SaveCode(ctx, "+79990000002", "654321", time.Minute))
		assert.True(t, store.isDown.Load())

		code, _, err := store.GetCode(ctx, "+79990000002")
		require.NoError(t, err)
		assert.Equal(t, "654321", code)
	})
}

func TestMemoryOTPStore(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	require.NoError(t, store.SaveCode(ctx, "+79990000001", "123456", time.Minute))

	code, attempts, err := store.GetCode(ctx, "+79990000001")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, 0, attempts)

	n, err := store.IncrAttempts(ctx, "+79990000001")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.DeleteCode(ctx, "+79990000001"))
	_, _, err = store.GetCode(ctx, "+79990000001")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	allowed, err := store.CheckCooldown(ctx, "+79990000001", time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = store.CheckCooldown(ctx, "+79990000001", time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}
