package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"lumiere/internal/domain"
	"lumiere/internal/models"
)

// Reminder sends a morning SMS to guests with a confirmed reservation for
// the next day.
type Reminder struct {
	store  domain.Store
	sms    domain.Notifier
	clock  domain.Clock
	hour   int
	logger *zerolog.Logger
}

func NewReminder(store domain.Store, sms domain.Notifier, clock domain.Clock, logger *zerolog.Logger) *Reminder {
	return &Reminder{store: store, sms: sms, clock: clock, hour: models.ReminderHour, logger: logger}
}

// Start runs the daily loop until ctx is done.
func (r *Reminder) Start(ctx context.Context) {
	r.logger.Info().Int("hour", r.hour).Msg("reminder worker started")
	defer r.logger.Info().Msg("reminder worker stopped")

	for {
		wait := r.untilNextRun()
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		sent, err := r.SendReminders(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("reminder run failed")
			continue
		}
		r.logger.Info().Int("sent", sent).Msg("reminder run finished")
	}
}

func (r *Reminder) untilNextRun() time.Duration {
	now := r.clock.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), r.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// SendReminders messages every guest with a confirmed reservation for
// tomorrow and returns how many texts went out. Staff can also trigger it
// on demand.
func (r *Reminder) SendReminders(ctx context.Context) (int, error) {
	tomorrow := r.clock.Now().AddDate(0, 0, 1).Format("2006-01-02")
	reservations, err := r.store.ConfirmedOnDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("load confirmed reservations: %w", err)
	}

	sent := 0
	for _, res := range reservations {
		if res.HolderPhone == "" {
			continue
		}
		msg := fmt.Sprintf("Hi %s! A reminder from Café Lumière: table %d for %d is booked for you tomorrow, %s at %s. See you there!",
			res.HolderName, res.TableNumber, res.Guests, res.Date, res.Time)
		if err := r.sms.SendSMS(ctx, res.HolderPhone, msg); err != nil {
			r.logger.Error().Err(err).Str("reservation_id", res.ID).Msg("reminder SMS failed")
			continue
		}
		sent++
	}
	return sent, nil
}
