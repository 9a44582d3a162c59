package models

import "time"

// Reservation is a seat booking for a table on a calendar day. While status
// is held, LockExpiry carries the moment the hold decays; once confirmed,
// ConfirmedAt is stamped and LockExpiry is cleared.
type Reservation struct {
	ID              string     `json:"id"`
	HolderPhone     string     `json:"user_phone"`
	HolderName      string     `json:"user_name"`
	HolderEmail     string     `json:"user_email,omitempty"` // legacy identifier
	ContactPhone    string     `json:"phone,omitempty"`
	Date            string     `json:"date"` // YYYY-MM-DD
	Time            string     `json:"time"` // HH:MM
	DurationMinutes int        `json:"duration_minutes"`
	Guests          int        `json:"guests"`
	TableID         string     `json:"table_id,omitempty"`
	TableNumber     int        `json:"table_number,omitempty"`
	TableCapacity   int        `json:"table_capacity,omitempty"`
	Status          string     `json:"status"`
	LockExpiry      *time.Time `json:"lock_expiry_time,omitempty"`
	SpecialRequests string     `json:"special_requests,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	SMSSent         bool       `json:"sms_sent"`
	BookedByRole    string     `json:"booked_by_role"`
	BookedByAgent   string     `json:"booked_by_agent,omitempty"`
}

// HoldExpired reports whether a held reservation's lock has passed.
// Always false for non-held statuses.
func (r *Reservation) HoldExpired(now time.Time) bool {
	return r.Status == StatusHeld && r.LockExpiry != nil && !r.LockExpiry.After(now)
}

// Active reports whether the reservation still occupies its slot.
func (r *Reservation) Active() bool {
	return r.Status == StatusHeld || r.Status == StatusConfirmed
}

// Contact returns the best phone number for notifications.
func (r *Reservation) Contact() string {
	if r.ContactPhone != "" {
		return r.ContactPhone
	}
	return r.HolderPhone
}
