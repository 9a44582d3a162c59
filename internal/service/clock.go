package service

import (
	"time"

	"lumiere/internal/domain"
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewClock returns the wall clock.
func NewClock() domain.Clock { return realClock{} }
