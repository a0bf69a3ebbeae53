package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// APIValidator - проверяет, что запущенный API соблюдает контракт эндпоинтов.
// It never initiates a real payment: only the validation paths of the relay are exercised.
type APIValidator struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIValidator создает новый валидатор
func NewAPIValidator(baseURL string) *APIValidator {
	return &APIValidator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ValidateAll проверяет все endpoints
func (v *APIValidator) ValidateAll(ctx context.Context) error {
	slog.Info("Starting API validation", "url", v.baseURL)

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"health", v.validateHealth},
		{"payment", v.validatePayment},
		{"events", v.validateEvents},
		{"bookings", v.validateBookings},
		{"metrics", v.validateMetrics},
	}

	for _, check := range checks {
		if err := check.fn(ctx); err != nil {
			return fmt.Errorf("%s validation failed: %w", check.name, err)
		}
		slog.Info("Endpoints valid", "group", check.name)
	}

	slog.Info("All endpoints passed validation")
	return nil
}

func (v *APIValidator) validateHealth(ctx context.Context) error {
	status, _, err := v.makeRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET /health: expected 200, got %d", status)
	}
	return nil
}

func (v *APIValidator) validatePayment(ctx context.Context) error {
	for _, body := range []string{`{}`, `{"amount":0}`, `{"amount":null}`} {
		status, data, err := v.makeRequest(ctx, http.MethodPost, "/api/payment/initiate", []byte(body))
		if err != nil {
			return err
		}
		if status != http.StatusBadRequest {
			return fmt.Errorf("POST /api/payment/initiate %s: expected 400, got %d", body, status)
		}

		var resp models.ErrorResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("POST /api/payment/initiate: failed to decode response: %w", err)
		}
		if resp.Message != "Amount is required" {
			return fmt.Errorf("POST /api/payment/initiate %s: unexpected message %q", body, resp.Message)
		}
	}
	return nil
}

func (v *APIValidator) validateEvents(ctx context.Context) error {
	status, data, err := v.makeRequest(ctx, http.MethodGet, "/api/events?page=1&pageSize=5", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET /api/events: expected 200, got %d", status)
	}

	var events []models.ListEventsResponseItem
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("GET /api/events: failed to decode response: %w", err)
	}

	status, _, err = v.makeRequest(ctx, http.MethodGet, "/api/events/abc/seats", nil)
	if err != nil {
		return err
	}
	if status != http.StatusBadRequest {
		return fmt.Errorf("GET /api/events/abc/seats: expected 400, got %d", status)
	}

	if len(events) == 0 {
		slog.Warn("No events found, skipping seat map check")
		return nil
	}

	path := fmt.Sprintf("/api/events/%d/seats", events[0].ID)
	status, data, err = v.makeRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: expected 200, got %d", path, status)
	}

	var seatMap models.SeatMapResponse
	if err := json.Unmarshal(data, &seatMap); err != nil {
		return fmt.Errorf("GET %s: failed to decode response: %w", path, err)
	}
	if seatMap.Booked+seatMap.Available != len(seatMap.Seats) {
		return fmt.Errorf("GET %s: booked %d + available %d != %d seats", path, seatMap.Booked, seatMap.Available, len(seatMap.Seats))
	}
	return nil
}

func (v *APIValidator) validateBookings(ctx context.Context) error {
	status, _, err := v.makeRequest(ctx, http.MethodGet, "/api/bookings", nil)
	if err != nil {
		return err
	}
	if status != http.StatusBadRequest {
		return fmt.Errorf("GET /api/bookings without email: expected 400, got %d", status)
	}
	return nil
}

func (v *APIValidator) validateMetrics(ctx context.Context) error {
	status, _, err := v.makeRequest(ctx, http.MethodGet, "/metrics", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET /metrics: expected 200, got %d", status)
	}
	return nil
}

func (v *APIValidator) makeRequest(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// RunValidation запускает валидацию API
func RunValidation(ctx context.Context, baseURL string) error {
	return NewAPIValidator(baseURL).ValidateAll(ctx)
}
