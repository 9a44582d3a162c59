package models

import "time"

// Reservation lifecycle statuses. Held reservations are time-boxed and decay
// to expired; confirmed, cancelled and expired are terminal except that a
// confirmed reservation may still be cancelled.
const (
	StatusHeld      = "held"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"

	// StatusPending is a legacy inbound-only state for reservations created
	// without a table. They stay pending until staff assign a table manually.
	StatusPending = "pending"
)

// Display statuses for tables. Informational only; reservation rows are the
// source of truth for what is actually booked.
const (
	TableAvailable = "available"
	TableLocked    = "locked"
	TableBooked    = "booked"
)

const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

const (
	// HoldTTL is how long a held reservation stays valid before it expires.
	HoldTTL = 5 * time.Minute

	// LockAcquireTimeout bounds waiting for a resource lock.
	LockAcquireTimeout = 5 * time.Second

	// SweepInterval is the cadence of the background expiry sweep.
	SweepInterval = 60 * time.Second

	// DefaultDurationMinutes is the reservation length when none is given.
	DefaultDurationMinutes = 90
)

const (
	OTPLength      = 6
	OTPExpiry      = 5 * time.Minute
	OTPCooldown    = time.Minute
	OTPMaxAttempts = 3

	// TokenExpiry is the lifetime of issued access tokens.
	TokenExpiry = 7 * 24 * time.Hour
)

const (
	// ReminderHour is the local hour at which daily reminders go out.
	ReminderHour = 9

	// WorkerQueueSize is the buffer of the sheets sync worker queue.
	WorkerQueueSize = 128
)

// ValidStatuses lists every status the admin override may set.
var ValidStatuses = []string{StatusHeld, StatusConfirmed, StatusCancelled, StatusExpired, StatusPending}

// IsValidStatus reports whether s is a known reservation status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
