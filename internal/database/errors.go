package database

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoChange is returned by conditional updates whose precondition no
	// longer held, meaning another writer got there first.
	ErrNoChange = errors.New("no rows changed")

	// ErrDuplicateNumber is returned when a table number is already taken.
	ErrDuplicateNumber = errors.New("table number already exists")

	// ErrHasActiveReservations blocks deleting a table that is still booked.
	ErrHasActiveReservations = errors.New("table has active reservations")
)
