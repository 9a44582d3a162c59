package models

import "time"

// User is identified by phone number. Email and HashedPassword exist only
// for accounts created through the legacy email registration flow.
type User struct {
	Phone          string    `json:"phone"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Role           string    `json:"role"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsStaff reports whether the user may act on other customers' reservations.
func (u *User) IsStaff() bool {
	return u.Role == RoleAgent || u.Role == RoleAdmin
}
