package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrSMSNotConfigured = errors.New("africa's talking credentials not set")

const africasTalkingURL = "https://api.africastalking.com/version1/messaging"

type SMSConfig struct {
	Username string
	APIKey   string
	// Endpoint overrides the messaging URL, used against the sandbox.
	Endpoint string
}

// SMSSender posts text messages to the Africa's Talking messaging API.
type SMSSender struct {
	cfg    SMSConfig
	client *http.Client
}

func NewSMSSender(cfg SMSConfig) *SMSSender {
	if cfg.Endpoint == "" {
		cfg.Endpoint = africasTalkingURL
	}
	return &SMSSender{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *SMSSender) Configured() bool {
	return s.cfg.Username != "" && s.cfg.APIKey != ""
}

func (s *SMSSender) Send(ctx context.Context, message string, recipients ...string) error {
	if !s.Configured() {
		return ErrSMSNotConfigured
	}
	if len(recipients) == 0 {
		return nil
	}

	data := url.Values{}
	data.Set("username", s.cfg.Username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}
	return nil
}

func (s *SMSSender) SendNewBookingToTherapist(ctx context.Context, phone string, b BookingEmail) error {
	msg := fmt.Sprintf("New Hilot booking #%d: %s on %s at %s for %s.",
		b.BookingID, b.ServiceName, b.Date, b.Time, b.ClientName)
	return s.Send(ctx, msg, phone)
}

func (s *SMSSender) SendBookingCancelled(ctx context.Context, phone string, b BookingEmail) error {
	msg := fmt.Sprintf("Hilot booking #%d on %s at %s has been cancelled.", b.BookingID, b.Date, b.Time)
	return s.Send(ctx, msg, phone)
}
