package service

import (
	"errors"
	"fmt"

	"lumiere/internal/locks"
)

// Expected operation outcomes. The API layer translates these into HTTP
// statuses; none of them is a fault.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state for this operation")
	ErrConflict         = errors.New("conflict")
	ErrGone             = errors.New("hold has expired")
	ErrCapacityExceeded = errors.New("table capacity exceeded")
	ErrUnavailable      = errors.New("table is not available")
	ErrValidation       = errors.New("validation failed")

	// ErrResourceBusy mirrors the lock manager's timeout signal so callers
	// only need the service package to classify outcomes.
	ErrResourceBusy = locks.ErrResourceBusy
)

// Conflict variants so callers can word the rejection precisely.
var (
	ErrSlotHeld   = fmt.Errorf("%w: table is temporarily held by another party", ErrConflict)
	ErrSlotBooked = fmt.Errorf("%w: table is already booked for this time", ErrConflict)
)

// Auth outcomes.
var (
	ErrCooldown        = errors.New("code was requested too recently")
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrBadCredentials  = errors.New("invalid email or password")
)
