// Package timeslot converts HH:MM times of day into comparable minute
// offsets and decides whether two reservation windows collide. It is the
// single overlap predicate used by the reservation core.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// ToMinutes parses an HH:MM string into minutes since midnight.
// Input must be validated at the API boundary; a malformed value reaching
// the conflict check is a programming error, so callers in the core use
// MustMinutes.
func ToMinutes(timeOfDay string) (int, error) {
	h, m, ok := strings.Cut(timeOfDay, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", timeOfDay)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", timeOfDay, err)
	}
	mins, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", timeOfDay, err)
	}
	if hours < 0 || hours > 23 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", timeOfDay)
	}
	return hours*60 + mins, nil
}

// MustMinutes is ToMinutes for pre-validated input.
func MustMinutes(timeOfDay string) int {
	m, err := ToMinutes(timeOfDay)
	if err != nil {
		panic(err)
	}
	return m
}

// Valid reports whether timeOfDay is a well-formed HH:MM string.
func Valid(timeOfDay string) bool {
	_, err := ToMinutes(timeOfDay)
	return err == nil
}

// Overlaps reports whether the half-open intervals [startA, startA+durA)
// and [startB, startB+durB) share at least one instant. Back-to-back slots
// (one ends exactly where the other begins) do not overlap.
func Overlaps(startA string, durA int, startB string, durB int) bool {
	a := MustMinutes(startA)
	b := MustMinutes(startB)
	return !(a+durA <= b || b+durB <= a)
}
