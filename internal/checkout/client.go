package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// PaymentAPI is the part of the boxoffice API the checkout flow depends on
type PaymentAPI interface {
	Initiate(ctx context.Context, amount float64) (*models.GatewayResponse, error)
	Status(ctx context.Context, merchantTransactionID string) (*models.GatewayResponse, error)
}

// APIError is a non-2xx answer from the boxoffice API
type APIError struct {
	StatusCode int
	Message    string
	Detail     json.RawMessage
}

func (e *APIError) Error() string {
	if upstream := e.UpstreamMessage(); upstream != "" && upstream != e.Message {
		return fmt.Sprintf("%s: %s", e.Message, upstream)
	}
	return e.Message
}

// UpstreamMessage extracts the gateway's message from the error detail, if any
func (e *APIError) UpstreamMessage() string {
	if len(e.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(e.Detail, &text); err == nil {
		return text
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Detail, &body); err == nil {
		return body.Message
	}
	return ""
}

// APIClient talks to the boxoffice HTTP API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *APIClient) Initiate(ctx context.Context, amount float64) (*models.GatewayResponse, error) {
	var resp models.GatewayResponse
	if err := c.do(ctx, http.MethodPost, "/api/payment/initiate", models.InitiatePaymentRequest{Amount: &amount}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) Status(ctx context.Context, merchantTransactionID string) (*models.GatewayResponse, error) {
	var resp models.GatewayResponse
	path := "/api/payment/status/" + url.PathEscape(merchantTransactionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) Events(ctx context.Context, query string, page, pageSize int) ([]models.ListEventsResponseItem, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var events []models.ListEventsResponseItem
	if err := c.do(ctx, http.MethodGet, "/api/events?"+params.Encode(), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *APIClient) Seats(ctx context.Context, eventID int64) (*models.SeatMapResponse, error) {
	var resp models.SeatMapResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/events/%d/seats", eventID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) Bookings(ctx context.Context, email string) ([]models.ListBookingsResponseItem, error) {
	var bookings []models.ListBookingsResponseItem
	path := "/api/bookings?" + url.Values{"email": []string{email}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp models.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			apiErr.Message = errResp.Message
			apiErr.Detail = errResp.Error
		} else {
			apiErr.Message = fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
