package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lumiere/internal/config"
	"lumiere/internal/metrics"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioSender delivers SMS through the Twilio REST API.
type TwilioSender struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
	logger     *zerolog.Logger
}

func NewTwilioSender(cfg config.SMSConfig, logger *zerolog.Logger) *TwilioSender {
	return &TwilioSender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    twilioAPIBase,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		logger:     logger,
	}
}

func (s *TwilioSender) SendSMS(ctx context.Context, phone, message string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", s.from)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.IncSMS("failed")
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.IncSMS("failed")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, string(body))
	}

	metrics.IncSMS("sent")
	s.logger.Info().Str("to", phone).Msg("SMS sent")
	return nil
}
