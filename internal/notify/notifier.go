package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// SMSSender delivers a text message to one phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// StaffSender delivers a message to the staff channel.
type StaffSender interface {
	NotifyStaff(ctx context.Context, message string) error
}

// Notifier fans notifications out to whichever channels are configured.
// A nil channel is simply skipped, so partial configurations work.
type Notifier struct {
	sms    SMSSender
	staff  StaffSender
	logger *zerolog.Logger
}

func New(sms SMSSender, staff StaffSender, logger *zerolog.Logger) *Notifier {
	return &Notifier{sms: sms, staff: staff, logger: logger}
}

func (n *Notifier) SendSMS(ctx context.Context, phone, message string) error {
	if n.sms == nil {
		n.logger.Debug().Str("to", phone).Msg("SMS disabled, skipping")
		return nil
	}
	return n.sms.SendSMS(ctx, phone, message)
}

func (n *Notifier) NotifyStaff(ctx context.Context, message string) error {
	if n.staff == nil {
		return nil
	}
	return n.staff.NotifyStaff(ctx, message)
}
