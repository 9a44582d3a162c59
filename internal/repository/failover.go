package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"lumiere/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverOTPStore serves from the primary store until it errors, then
// degrades to the fallback and probes the primary again after a minute.
// ErrCodeNotFound is a domain answer, not an outage, and never trips the
// failover.
type FailoverOTPStore struct {
	primary   domain.OTPStore
	fallback  domain.OTPStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverOTPStore(primary, fallback domain.OTPStore, logger *zerolog.Logger) *FailoverOTPStore {
	return &FailoverOTPStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverOTPStore) markDown(err error) {
	f.logger.Error().Err(err).Msg("Primary OTP store failed, falling back to memory")
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverOTPStore) usePrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	// Probe the primary again after a minute
	if time.Since(time.Unix(0, f.lastCheck.Load())) > time.Minute {
		f.lastCheck.Store(time.Now().UnixNano())
		f.isDown.Store(false)
		return true
	}
	return false
}

func (f *FailoverOTPStore) SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	if f.usePrimary() {
		err := f.primary.SaveCode(ctx, phone, code, ttl)
		if err == nil {
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.SaveCode(ctx, phone, code, ttl)
}

func (f *FailoverOTPStore) GetCode(ctx context.Context, phone string) (string, int, error) {
	if f.usePrimary() {
		code, attempts, err := f.primary.GetCode(ctx, phone)
		if err == nil || errors.Is(err, ErrCodeNotFound) {
			return code, attempts, err
		}
		f.markDown(err)
	}
	return f.fallback.GetCode(ctx, phone)
}

func (f *FailoverOTPStore) IncrAttempts(ctx context.Context, phone string) (int, error) {
	if f.usePrimary() {
		count, err := f.primary.IncrAttempts(ctx, phone)
		if err == nil || errors.Is(err, ErrCodeNotFound) {
			return count, err
		}
		f.markDown(err)
	}
	return f.fallback.IncrAttempts(ctx, phone)
}

func (f *FailoverOTPStore) DeleteCode(ctx context.Context, phone string) error {
	if f.usePrimary() {
		err := f.primary.DeleteCode(ctx, phone)
		if err == nil {
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.DeleteCode(ctx, phone)
}

func (f *FailoverOTPStore) CheckCooldown(ctx context.Context, phone string, window time.Duration) (bool, error) {
	if f.usePrimary() {
		allowed, err := f.primary.CheckCooldown(ctx, phone, window)
		if err == nil {
			return allowed, nil
		}
		f.markDown(err)
	}
	return f.fallback.CheckCooldown(ctx, phone, window)
}
