package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lumiere/internal/config"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound is returned when no login code exists for a phone,
// either because none was issued or because it expired.
var ErrCodeNotFound = errors.New("code not found")

// RedisOTPStore keeps one-time login codes in Redis so restarts and
// multiple instances agree on issued codes.
type RedisOTPStore struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func codeKey(phone string) string     { return "otp:code:" + phone }
func attemptsKey(phone string) string { return "otp:attempts:" + phone }
func cooldownKey(phone string) string { return "otp:cooldown:" + phone }

func (r *RedisOTPStore) SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, codeKey(phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save code in redis: %w", err)
	}
	// Reset the attempt counter together with the code
	if err := r.client.Set(ctx, attemptsKey(phone), 0, ttl).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts in redis: %w", err)
	}
	return nil
}

func (r *RedisOTPStore) GetCode(ctx context.Context, phone string) (string, int, error) {
	if r.client == nil {
		return "", 0, fmt.Errorf("redis client is nil")
	}
	code, err := r.client.Get(ctx, codeKey(phone)).Result()
	if err == redis.Nil {
		return "", 0, ErrCodeNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to get code from redis: %w", err)
	}

	attempts := 0
	if val, err := r.client.Get(ctx, attemptsKey(phone)).Result(); err == nil {
		attempts, _ = strconv.Atoi(val)
	}
	return code, attempts, nil
}

func (r *RedisOTPStore) IncrAttempts(ctx context.Context, phone string) (int, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	count, err := r.client.Incr(ctx, attemptsKey(phone)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return int(count), nil
}

func (r *RedisOTPStore) DeleteCode(ctx context.Context, phone string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, codeKey(phone), attemptsKey(phone)).Err(); err != nil {
		return fmt.Errorf("failed to delete code from redis: %w", err)
	}
	return nil
}

// CheckCooldown reports whether a new code may be issued. The first call in
// a window claims the cooldown key; later calls inside the window are denied.
func (r *RedisOTPStore) CheckCooldown(ctx context.Context, phone string, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	ok, err := r.client.SetNX(ctx, cooldownKey(phone), 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	return ok, nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
