package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOTPStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	store := NewRedisOTPStore(client)
	ctx := context.Background()

	t.Run("SaveAndGetCode", func(t *testing.T) {
		err := store.SaveCode(ctx, "+79990000001", "123456", time.Minute)
		require.NoError(t, err)

		code, attempts, err := store.GetCode(ctx, "+79990000001")
		require.NoError(t, err)
		assert.Equal(t, "123456", code)
		assert.Equal(t, 0, attempts)
	})

	t.Run("GetMissingCode", func(t *testing.T) {
		_, _, err := store.GetCode(ctx, "+79990009999")
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("ExpiredCode", func(t *testing.T) {
		require.NoError(t, store.SaveCode(ctx, "+79990000002", "654321", time.Minute))
		s.FastForward(2 * time.Minute)

		_, _, err := store.GetCode(ctx, "+79990000002")
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("Attempts", func(t *testing.T) {
		require.NoError(t, store.SaveCode(ctx, "+79990000003", "111222", time.Minute))

		n, err := store.IncrAttempts(ctx, "+79990000003")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = store.IncrAttempts(ctx, "+79990000003")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, attempts, err := store.GetCode(ctx, "+79990000003")
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)

		// Re-issuing a code resets the counter
		require.NoError(t, store.SaveCode(ctx, "+79990000003", "333444", time.Minute))
		_, attempts, err = store.GetCode(ctx, "+79990000003")
		require.NoError(t, err)
		assert.Equal(t, 0, attempts)
	})

	t.Run("DeleteCode", func(t *testing.T) {
		require.NoError(t, store.SaveCode(ctx, "+79990000004", "555666", time.Minute))
		require.NoError(t, store.DeleteCode(ctx, "+79990000004"))

		_, _, err := store.GetCode(ctx, "+79990000004")
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("Cooldown", func(t *testing.T) {
		allowed, err := store.CheckCooldown(ctx, "+79990000005", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = store.CheckCooldown(ctx, "+79990000005", time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(2 * time.Minute)
		allowed, err = store.CheckCooldown(ctx, "+79990000005", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
