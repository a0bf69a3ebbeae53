package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"boxoffice/internal/models"
)

var ErrNotifierNotConfigured = errors.New("notification endpoint is not configured")

// NotificationClient calls the confirmation email function
type NotificationClient struct {
	functionURL string
	secret      string
	httpClient  *http.Client
}

type NotifierConfig struct {
	FunctionURL string
	Secret      string
	Timeout     time.Duration
}

type notificationRequest struct {
	Record *models.Booking `json:"record"`
}

func NewNotificationClient(cfg NotifierConfig) *NotificationClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &NotificationClient{
		functionURL: cfg.FunctionURL,
		secret:      cfg.Secret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendBookingConfirmation asks the email function to send the ticket for a stored booking.
func (nc *NotificationClient) SendBookingConfirmation(ctx context.Context, booking *models.Booking) error {
	if nc.functionURL == "" {
		return ErrNotifierNotConfigured
	}

	endpoint, err := url.Parse(nc.functionURL)
	if err != nil {
		return fmt.Errorf("invalid notification url: %w", err)
	}
	q := endpoint.Query()
	q.Set("secret", nc.secret)
	endpoint.RawQuery = q.Encode()

	body, err := json.Marshal(notificationRequest{Record: booking})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := nc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notification failed with status %d: %s", resp.StatusCode, string(text))
	}

	return nil
}
