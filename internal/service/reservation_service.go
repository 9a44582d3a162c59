package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lumiere/internal/database"
	"lumiere/internal/domain"
	"lumiere/internal/events"
	"lumiere/internal/metrics"
	"lumiere/internal/models"
	"lumiere/internal/timeslot"
)

func tableKey(id string) string       { return "table:" + id }
func reservationKey(id string) string { return "reservation:" + id }

// pendingKey serializes creation of table-less reservations, which have no
// table scope of their own.
const pendingKey = "reservations:pending"

// Caller identifies the authenticated actor for authorization checks.
type Caller struct {
	Phone string
	Role  string
}

func (c Caller) staff() bool {
	return c.Role == models.RoleAgent || c.Role == models.RoleAdmin
}

// HoldRequest carries everything needed to place or book a reservation.
type HoldRequest struct {
	HolderPhone     string
	HolderName      string
	ContactPhone    string
	TableID         string
	Date            string
	Time            string
	DurationMinutes int
	Guests          int
	SpecialRequests string
	BookedByRole    string
	BookedByAgent   string
}

// StatusResult is the public view of a reservation's lifecycle position.
type StatusResult struct {
	ReservationID    string `json:"reservation_id"`
	Status           string `json:"status"`
	SecondsRemaining *int   `json:"seconds_remaining,omitempty"`
}

// ReservationService owns the hold/confirm/cancel/expire lifecycle. Every
// compound read-check-write runs inside a lock scope; nested scopes are
// always taken in the order reservation, then table.
type ReservationService struct {
	store    domain.Store
	locker   domain.Locker
	clock    domain.Clock
	notifier domain.Notifier
	eventBus domain.EventPublisher
	sheets   domain.SyncWorker
	logger   *zerolog.Logger
}

func NewReservationService(
	store domain.Store,
	locker domain.Locker,
	clock domain.Clock,
	notifier domain.Notifier,
	eventBus domain.EventPublisher,
	sheets domain.SyncWorker,
	logger *zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		store:    store,
		locker:   locker,
		clock:    clock,
		notifier: notifier,
		eventBus: eventBus,
		sheets:   sheets,
		logger:   logger,
	}
}

// FindAvailableTables lists tables that seat the party and have no
// conflicting reservation for the requested window, smallest table first.
// Tables whose lock cannot be taken in time are treated as unavailable
// rather than failing the whole search.
func (s *ReservationService) FindAvailableTables(ctx context.Context, guests int, date, timeOfDay string, duration int) ([]*models.Table, error) {
	if err := validateSlot(date, timeOfDay); err != nil {
		return nil, err
	}
	if guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	}
	if duration <= 0 {
		duration = models.DefaultDurationMinutes
	}

	candidates, err := s.store.TablesWithCapacity(ctx, guests)
	if err != nil {
		return nil, err
	}

	available := make([]*models.Table, 0, len(candidates))
	for _, t := range candidates {
		t := t
		err := s.locker.Do(ctx, tableKey(t.ID), models.LockAcquireTimeout, func() error {
			conflict, err := s.findConflict(ctx, t.ID, date, timeOfDay, duration)
			if err != nil {
				return err
			}
			if conflict == nil {
				available = append(available, t)
			}
			return nil
		})
		if errors.Is(err, ErrResourceBusy) {
			metrics.IncLockTimeout("table")
			s.logger.Warn().Str("table_id", t.ID).Msg("table busy during search, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return available, nil
}

// findConflict returns the first active reservation overlapping the
// requested window, reconciling expired holds on the way. Must be called
// with the table's lock scope held. Expired holds are reclaimed with a
// conditional update rather than a nested reservation scope, which keeps
// the reservation-before-table lock order intact.
func (s *ReservationService) findConflict(ctx context.Context, tableID, date, timeOfDay string, duration int) (*models.Reservation, error) {
	now := s.clock.Now()
	active, err := s.store.ActiveReservationsOnTable(ctx, tableID, date)
	if err != nil {
		return nil, err
	}

	for _, r := range active {
		if r.HoldExpired(now) {
			if err := s.store.MarkReservationExpired(ctx, r.ID); err == nil {
				metrics.IncHoldExpired("inline")
				s.publishEvent(events.EventReservationExpired, r, "system")
			} else if !errors.Is(err, database.ErrNoChange) {
				return nil, err
			}
			continue
		}
		if timeslot.Overlaps(timeOfDay, duration, r.Time, r.DurationMinutes) {
			return r, nil
		}
	}
	return nil, nil
}

// CreateHold places a five-minute tentative hold on a table. Retrying with
// the same holder and slot while the first hold is live returns the
// existing hold instead of a conflict.
func (s *ReservationService) CreateHold(ctx context.Context, req HoldRequest) (*models.Reservation, error) {
	if err := validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}
	if req.Guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = models.DefaultDurationMinutes
	}

	var created *models.Reservation
	var inserted bool
	err := s.locker.Do(ctx, tableKey(req.TableID), models.LockAcquireTimeout, func() error {
		table, err := s.store.GetTable(ctx, req.TableID)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: table %s", ErrNotFound, req.TableID)
		}
		if err != nil {
			return err
		}
		if table.Capacity < req.Guests {
			return fmt.Errorf("%w: table %d seats %d", ErrCapacityExceeded, table.Number, table.Capacity)
		}
		if !table.Available {
			return fmt.Errorf("%w: table %d", ErrUnavailable, table.Number)
		}

		now := s.clock.Now()

		// Idempotent retry: same holder, same slot, hold still live
		existing, err := s.store.FindLiveHold(ctx, req.HolderPhone, req.TableID, req.Date, req.Time, now)
		if err == nil {
			created = existing
			return nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return err
		}

		conflict, err := s.findConflict(ctx, req.TableID, req.Date, req.Time, req.DurationMinutes)
		if err != nil {
			return err
		}
		if conflict != nil {
			metrics.IncHoldConflict()
			if conflict.Status == models.StatusHeld {
				return ErrSlotHeld
			}
			return ErrSlotBooked
		}

		expiry := now.Add(models.HoldTTL)
		role := req.BookedByRole
		if role == "" {
			role = models.RoleCustomer
		}
		created = &models.Reservation{
			ID:              uuid.New().String(),
			HolderPhone:     req.HolderPhone,
			HolderName:      req.HolderName,
			ContactPhone:    req.ContactPhone,
			Date:            req.Date,
			Time:            req.Time,
			DurationMinutes: req.DurationMinutes,
			Guests:          req.Guests,
			TableID:         table.ID,
			TableNumber:     table.Number,
			TableCapacity:   table.Capacity,
			Status:          models.StatusHeld,
			LockExpiry:      &expiry,
			SpecialRequests: req.SpecialRequests,
			CreatedAt:       now,
			BookedByRole:    role,
			BookedByAgent:   req.BookedByAgent,
		}
		if err := s.store.InsertReservation(ctx, created); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	// An idempotent retry returns the live hold without re-announcing it
	if inserted {
		metrics.IncHoldCreated()
		s.publishEvent(events.EventReservationHeld, created, created.BookedByRole)
		s.enqueueSync(ctx, created, "upsert")
		s.logger.Info().
			Str("reservation_id", created.ID).
			Str("table_id", created.TableID).
			Str("date", created.Date).
			Str("time", created.Time).
			Msg("hold created")
	}
	return created, nil
}

// Confirm turns a live hold into a confirmed booking. Idempotent on an
// already-confirmed reservation. The conditional update is the final race
// guard: if the status moved between our read and the write, the caller
// gets Conflict, never a double booking.
func (s *ReservationService) Confirm(ctx context.Context, reservationID string, caller Caller) (*models.Reservation, error) {
	var confirmed *models.Reservation
	var transitioned bool
	err := s.locker.Do(ctx, reservationKey(reservationID), models.LockAcquireTimeout, func() error {
		r, err := s.getAuthorized(ctx, reservationID, caller)
		if err != nil {
			return err
		}

		if r.Status == models.StatusConfirmed {
			confirmed = r
			return nil
		}
		if r.Status != models.StatusHeld {
			return fmt.Errorf("%w: reservation is %s", ErrInvalidState, r.Status)
		}

		now := s.clock.Now()
		if r.HoldExpired(now) {
			if err := s.store.MarkReservationExpired(ctx, r.ID); err == nil {
				metrics.IncHoldExpired("inline")
				s.publishEvent(events.EventReservationExpired, r, "system")
			}
			return ErrGone
		}

		err = s.locker.Do(ctx, tableKey(r.TableID), models.LockAcquireTimeout, func() error {
			if err := s.store.ConfirmReservation(ctx, r.ID, now); err != nil {
				if errors.Is(err, database.ErrNoChange) {
					return fmt.Errorf("%w: reservation changed while confirming", ErrConflict)
				}
				return err
			}
			return nil
		})
		if errors.Is(err, ErrResourceBusy) {
			metrics.IncLockTimeout("table")
			return err
		}
		if err != nil {
			return err
		}

		transitioned = true
		confirmed, err = s.store.GetReservation(ctx, r.ID)
		return err
	})
	if errors.Is(err, ErrResourceBusy) {
		metrics.IncLockTimeout("reservation")
	}
	if err != nil {
		return nil, err
	}

	// An idempotent repeat returns the reservation without re-notifying
	if transitioned {
		s.notifyAsync(confirmed, fmt.Sprintf(
			"Your table %d at Lumière is confirmed for %s %s. See you there!",
			confirmed.TableNumber, confirmed.Date, confirmed.Time))
		s.publishEvent(events.EventReservationConfirmed, confirmed, caller.Role)
		s.enqueueSync(ctx, confirmed, "update_status")
		s.logger.Info().Str("reservation_id", confirmed.ID).Msg("reservation confirmed")
	}
	return confirmed, nil
}

// Cancel releases a held or confirmed reservation. Cancellation is a
// status transition; the row stays for history.
func (s *ReservationService) Cancel(ctx context.Context, reservationID string, caller Caller) error {
	var cancelled *models.Reservation
	var wasConfirmed bool
	err := s.locker.Do(ctx, reservationKey(reservationID), models.LockAcquireTimeout, func() error {
		r, err := s.getAuthorized(ctx, reservationID, caller)
		if err != nil {
			return err
		}
		if r.Status != models.StatusHeld && r.Status != models.StatusConfirmed {
			return fmt.Errorf("%w: reservation is %s", ErrInvalidState, r.Status)
		}

		wasConfirmed = r.Status == models.StatusConfirmed
		if err := s.store.CancelReservation(ctx, r.ID, r.Status); err != nil {
			if errors.Is(err, database.ErrNoChange) {
				return fmt.Errorf("%w: reservation changed while cancelling", ErrConflict)
			}
			return err
		}
		r.Status = models.StatusCancelled
		cancelled = r
		return nil
	})
	if errors.Is(err, ErrResourceBusy) {
		metrics.IncLockTimeout("reservation")
	}
	if err != nil {
		return err
	}

	if wasConfirmed {
		s.notifyAsync(cancelled, fmt.Sprintf(
			"Your reservation at Lumière for %s %s has been cancelled.",
			cancelled.Date, cancelled.Time))
	}
	s.publishEvent(events.EventReservationCancelled, cancelled, caller.Role)
	s.enqueueSync(ctx, cancelled, "update_status")
	s.logger.Info().Str("reservation_id", reservationID).Bool("was_confirmed", wasConfirmed).Msg("reservation cancelled")
	return nil
}

// Status reports the lifecycle position without authentication. A hold
// observed past its expiry is reconciled on the spot, so callers never see
// a stale Held.
func (s *ReservationService) Status(ctx context.Context, reservationID string) (*StatusResult, error) {
	r, err := s.store.GetReservation(ctx, reservationID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if r.HoldExpired(now) {
		// Double-check under the reservation scope before writing
		err := s.locker.Do(ctx, reservationKey(reservationID), models.LockAcquireTimeout, func() error {
			fresh, err := s.store.GetReservation(ctx, reservationID)
			if err != nil {
				return err
			}
			if fresh.HoldExpired(s.clock.Now()) {
				if err := s.store.MarkReservationExpired(ctx, fresh.ID); err == nil {
					metrics.IncHoldExpired("inline")
					s.publishEvent(events.EventReservationExpired, fresh, "system")
				} else if !errors.Is(err, database.ErrNoChange) {
					return err
				}
			}
			r = fresh
			return nil
		})
		if err != nil && !errors.Is(err, ErrResourceBusy) {
			return nil, err
		}
		r, err = s.store.GetReservation(ctx, reservationID)
		if err != nil {
			return nil, err
		}
		// If the scope was busy the row may still say held. The write can
		// wait for the sweeper; the answer cannot: an expired hold is
		// never reported as held.
		if r.HoldExpired(s.clock.Now()) {
			return &StatusResult{ReservationID: r.ID, Status: models.StatusExpired}, nil
		}
	}

	result := &StatusResult{ReservationID: r.ID, Status: r.Status}
	if r.Status == models.StatusHeld && r.LockExpiry != nil {
		secs := int(r.LockExpiry.Sub(now).Seconds())
		if secs < 0 {
			secs = 0
		}
		result.SecondsRemaining = &secs
	}
	return result, nil
}

// SweepExpired reclaims every hold whose expiry has passed. Each candidate
// is re-checked under its own scope, so racing an inline reconciliation or
// a concurrent confirm is harmless. Returns the number reclaimed.
func (s *ReservationService) SweepExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()
	ids, err := s.store.FindExpiredHeld(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, id := range ids {
		id := id
		err := s.locker.Do(ctx, reservationKey(id), models.LockAcquireTimeout, func() error {
			r, err := s.store.GetReservation(ctx, id)
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if !r.HoldExpired(s.clock.Now()) {
				return nil
			}
			if err := s.store.MarkReservationExpired(ctx, id); err != nil {
				if errors.Is(err, database.ErrNoChange) {
					return nil
				}
				return err
			}
			count++
			metrics.IncHoldExpired("sweep")
			s.publishEvent(events.EventReservationExpired, r, "system")
			return nil
		})
		if errors.Is(err, ErrResourceBusy) {
			metrics.IncLockTimeout("reservation")
			continue
		}
		if err != nil {
			return count, err
		}
	}

	if count > 0 {
		s.logger.Info().Int("count", count).Msg("expired holds reclaimed")
	}
	return count, nil
}

// AgentBook creates an immediately confirmed reservation on a customer's
// behalf, under the same table scope and conflict check as a hold.
func (s *ReservationService) AgentBook(ctx context.Context, req HoldRequest) (*models.Reservation, error) {
	if err := validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}
	if req.Guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = models.DefaultDurationMinutes
	}

	var created *models.Reservation
	err := s.locker.Do(ctx, tableKey(req.TableID), models.LockAcquireTimeout, func() error {
		table, err := s.store.GetTable(ctx, req.TableID)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: table %s", ErrNotFound, req.TableID)
		}
		if err != nil {
			return err
		}
		if table.Capacity < req.Guests {
			return fmt.Errorf("%w: table %d seats %d", ErrCapacityExceeded, table.Number, table.Capacity)
		}
		if !table.Available {
			return fmt.Errorf("%w: table %d", ErrUnavailable, table.Number)
		}

		conflict, err := s.findConflict(ctx, req.TableID, req.Date, req.Time, req.DurationMinutes)
		if err != nil {
			return err
		}
		if conflict != nil {
			metrics.IncHoldConflict()
			if conflict.Status == models.StatusHeld {
				return ErrSlotHeld
			}
			return ErrSlotBooked
		}

		now := s.clock.Now()
		created = &models.Reservation{
			ID:              uuid.New().String(),
			HolderPhone:     req.HolderPhone,
			HolderName:      req.HolderName,
			ContactPhone:    req.ContactPhone,
			Date:            req.Date,
			Time:            req.Time,
			DurationMinutes: req.DurationMinutes,
			Guests:          req.Guests,
			TableID:         table.ID,
			TableNumber:     table.Number,
			TableCapacity:   table.Capacity,
			Status:          models.StatusConfirmed,
			SpecialRequests: req.SpecialRequests,
			CreatedAt:       now,
			ConfirmedAt:     &now,
			BookedByRole:    models.RoleAgent,
			BookedByAgent:   req.BookedByAgent,
		}
		return s.store.InsertReservation(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync(created, fmt.Sprintf(
		"Lumière: table %d is booked for you on %s at %s for %d guests.",
		created.TableNumber, created.Date, created.Time, created.Guests))
	s.publishEvent(events.EventReservationConfirmed, created, models.RoleAgent)
	s.enqueueSync(ctx, created, "upsert")
	s.logger.Info().
		Str("reservation_id", created.ID).
		Str("agent", created.BookedByAgent).
		Msg("agent booking created")
	return created, nil
}

// AdminSetStatus forces any valid status. Escape hatch: only existence is
// checked, not lifecycle preconditions.
func (s *ReservationService) AdminSetStatus(ctx context.Context, reservationID, status string) (*models.Reservation, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	var updated *models.Reservation
	err := s.locker.Do(ctx, reservationKey(reservationID), models.LockAcquireTimeout, func() error {
		if err := s.store.ForceReservationStatus(ctx, reservationID, status, s.clock.Now()); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
			}
			return err
		}
		var err error
		updated, err = s.store.GetReservation(ctx, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.enqueueSync(ctx, updated, "update_status")
	s.logger.Warn().
		Str("reservation_id", reservationID).
		Str("status", status).
		Msg("reservation status forced by admin")
	return updated, nil
}

// CreatePending records a table-less reservation for manual table
// assignment by staff. Pending reservations carry no interval on any
// table, so they do not participate in overlap checking.
func (s *ReservationService) CreatePending(ctx context.Context, req HoldRequest) (*models.Reservation, error) {
	if err := validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}
	if req.Guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = models.DefaultDurationMinutes
	}

	var created *models.Reservation
	err := s.locker.Do(ctx, pendingKey, models.LockAcquireTimeout, func() error {
		role := req.BookedByRole
		if role == "" {
			role = models.RoleCustomer
		}
		created = &models.Reservation{
			ID:              uuid.New().String(),
			HolderPhone:     req.HolderPhone,
			HolderName:      req.HolderName,
			ContactPhone:    req.ContactPhone,
			Date:            req.Date,
			Time:            req.Time,
			DurationMinutes: req.DurationMinutes,
			Guests:          req.Guests,
			Status:          models.StatusPending,
			SpecialRequests: req.SpecialRequests,
			CreatedAt:       s.clock.Now(),
			BookedByRole:    role,
		}
		return s.store.InsertReservation(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyStaff(ctx, fmt.Sprintf(
		"New reservation request without a table: %s, %s %s, %d guests. Assign a table.",
		created.HolderName, created.Date, created.Time, created.Guests)); err != nil {
		s.logger.Error().Err(err).Msg("staff notification failed")
	}
	s.publishEvent(events.EventReservationPending, created, created.BookedByRole)
	return created, nil
}

// TableSchedule returns a table's active reservations for one day,
// reconciling expired holds so staff see the real picture.
func (s *ReservationService) TableSchedule(ctx context.Context, tableID, date string) ([]*models.Reservation, error) {
	if _, err := s.store.GetTable(ctx, tableID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
		}
		return nil, err
	}

	active, err := s.store.ActiveReservationsOnTable(ctx, tableID, date)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	schedule := make([]*models.Reservation, 0, len(active))
	for _, r := range active {
		if r.HoldExpired(now) {
			if err := s.store.MarkReservationExpired(ctx, r.ID); err == nil {
				metrics.IncHoldExpired("inline")
				s.publishEvent(events.EventReservationExpired, r, "system")
			}
			continue
		}
		schedule = append(schedule, r)
	}
	return schedule, nil
}

// Get returns a reservation the caller may see.
func (s *ReservationService) Get(ctx context.Context, reservationID string, caller Caller) (*models.Reservation, error) {
	return s.getAuthorized(ctx, reservationID, caller)
}

// ByHolder returns the caller's reservations, newest first.
func (s *ReservationService) ByHolder(ctx context.Context, phone, email string) ([]*models.Reservation, error) {
	return s.store.ReservationsByHolder(ctx, phone, email)
}

// List returns reservations filtered by optional status and date.
func (s *ReservationService) List(ctx context.Context, status, date string) ([]*models.Reservation, error) {
	return s.store.ListReservations(ctx, status, date)
}

// Search supports the agent view with free-text holder matching.
func (s *ReservationService) Search(ctx context.Context, date, status, search string) ([]*models.Reservation, error) {
	return s.store.SearchReservations(ctx, date, status, search)
}

func (s *ReservationService) getAuthorized(ctx context.Context, reservationID string, caller Caller) (*models.Reservation, error) {
	r, err := s.store.GetReservation(ctx, reservationID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
	}
	if err != nil {
		return nil, err
	}
	if !caller.staff() && caller.Phone != r.HolderPhone {
		return nil, ErrForbidden
	}
	return r, nil
}

// notifyAsync fires the SMS off the request path. Delivery failure only
// leaves sms_sent unset; it never fails the operation that triggered it.
func (s *ReservationService) notifyAsync(r *models.Reservation, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.notifier.SendSMS(ctx, r.Contact(), message); err != nil {
			s.logger.Error().Err(err).Str("reservation_id", r.ID).Msg("sms delivery failed")
			return
		}
		if err := s.store.SetSMSSent(ctx, r.ID, true); err != nil {
			s.logger.Error().Err(err).Str("reservation_id", r.ID).Msg("failed to record sms flag")
		}
	}()
}

func (s *ReservationService) publishEvent(eventType string, r *models.Reservation, changedBy string) {
	if s.eventBus == nil || r == nil {
		return
	}
	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		HolderPhone:   r.HolderPhone,
		HolderName:    r.HolderName,
		TableID:       r.TableID,
		TableNumber:   r.TableNumber,
		Date:          r.Date,
		Time:          r.Time,
		Guests:        r.Guests,
		Status:        r.Status,
		ChangedBy:     changedBy,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("reservation_id", r.ID).Msg("publish event error")
	}
}

func (s *ReservationService) enqueueSync(ctx context.Context, r *models.Reservation, taskType string) {
	if s.sheets == nil || r == nil {
		return
	}
	var status string
	if taskType == "update_status" {
		status = r.Status
	}
	if err := s.sheets.EnqueueTask(ctx, taskType, r, status); err != nil {
		s.logger.Error().Err(err).Str("reservation_id", r.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}

func validateSlot(date, timeOfDay string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if !timeslot.Valid(timeOfDay) {
		return fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	return nil
}
