package domain

import (
	"context"
	"time"

	"lumiere/internal/models"
)

// Store is the persistence surface the services depend on. Satisfied by
// *database.DB.
type Store interface {
	// reservations
	InsertReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ActiveReservationsOnTable(ctx context.Context, tableID, date string) ([]*models.Reservation, error)
	FindLiveHold(ctx context.Context, holderPhone, tableID, date, timeOfDay string, now time.Time) (*models.Reservation, error)
	ConfirmReservation(ctx context.Context, id string, now time.Time) error
	MarkReservationExpired(ctx context.Context, id string) error
	CancelReservation(ctx context.Context, id, fromStatus string) error
	ForceReservationStatus(ctx context.Context, id, status string, now time.Time) error
	SetSMSSent(ctx context.Context, id string, sent bool) error
	FindExpiredHeld(ctx context.Context, now time.Time) ([]string, error)
	ReservationsByHolder(ctx context.Context, phone, email string) ([]*models.Reservation, error)
	ListReservations(ctx context.Context, status, date string) ([]*models.Reservation, error)
	SearchReservations(ctx context.Context, date, status, search string) ([]*models.Reservation, error)
	ConfirmedOnDateRange(ctx context.Context, after, upTo string) ([]*models.Reservation, error)
	ConfirmedOnDate(ctx context.Context, date string) ([]*models.Reservation, error)
	LiveHoldsOnDate(ctx context.Context, date string, now time.Time) ([]*models.Reservation, error)
	CountReservations(ctx context.Context) (int, error)
	CountReservationsByStatus(ctx context.Context, status string) (int, error)
	CountReservationsOnDate(ctx context.Context, date, status string) (int, error)
	CountActiveOnTable(ctx context.Context, tableID string) (int, error)

	// tables
	CreateTable(ctx context.Context, t *models.Table) error
	GetTable(ctx context.Context, id string) (*models.Table, error)
	ListTables(ctx context.Context) ([]*models.Table, error)
	TablesWithCapacity(ctx context.Context, minCapacity int) ([]*models.Table, error)
	UpdateTable(ctx context.Context, t *models.Table) error
	DeleteTable(ctx context.Context, id string) error
	CountTables(ctx context.Context) (int, error)

	// users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// menu and café profile
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	ListMenuItems(ctx context.Context) ([]*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
	GetCafeInfo(ctx context.Context) (*models.CafeInfo, error)
	UpsertCafeInfo(ctx context.Context, info *models.CafeInfo) error
}

// Locker serializes compound read-check-write sequences on a named resource.
type Locker interface {
	Do(ctx context.Context, key string, timeout time.Duration, fn func() error) error
	Release(key string)
	Held() int
	Keys() []string
}

// Clock abstracts time so expiry behavior is testable.
type Clock interface {
	Now() time.Time
}

// EventPublisher emits domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers customer and staff notifications. Implementations must
// be safe for concurrent use; failures are logged, never propagated into
// reservation state.
type Notifier interface {
	SendSMS(ctx context.Context, phone, message string) error
	NotifyStaff(ctx context.Context, message string) error
}

// OTPStore keeps one-time login codes with expiry and attempt accounting.
type OTPStore interface {
	SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error
	GetCode(ctx context.Context, phone string) (code string, attempts int, err error)
	IncrAttempts(ctx context.Context, phone string) (int, error)
	DeleteCode(ctx context.Context, phone string) error
	CheckCooldown(ctx context.Context, phone string, window time.Duration) (bool, error)
}

// SheetsWriter mirrors reservations into a spreadsheet for staff who live
// in Google Sheets.
type SheetsWriter interface {
	AppendReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, reservationID, status string) error
}

// SyncWorker enqueues spreadsheet sync tasks for asynchronous processing.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, r *models.Reservation, status string) error
}
