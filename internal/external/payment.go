package external

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	RedirectModeRedirect = "REDIRECT"
	InstrumentPayPage    = "PAY_PAGE"
)

type PaymentClient struct {
	hostURL    string
	merchantID string
	saltKey    string
	saltIndex  string
	httpClient *http.Client
}

type PaymentConfig struct {
	HostURL     string
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	CallbackURL string
	Timeout     time.Duration
}

// PayRequest is the JSON body that gets base64-encoded into the pay call
type PayRequest struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	PaymentInstrument     PaymentInstrument `json:"paymentInstrument"`
}

type PaymentInstrument struct {
	Type string `json:"type"`
}

type payEnvelope struct {
	Request string `json:"request"`
}

// UpstreamError is returned for any failed gateway call. Body holds the
// gateway's error payload when it answered, Err the transport error when it did not.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       json.RawMessage
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: gateway returned status %d: %s", e.Op, e.StatusCode, string(e.Body))
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Payload returns the value relayed to callers as the "error" field:
// the upstream JSON when present, otherwise the error message as a JSON string.
func (e *UpstreamError) Payload() json.RawMessage {
	if len(e.Body) > 0 {
		return e.Body
	}
	text := e.Error()
	if e.Err != nil {
		text = e.Err.Error()
	}
	msg, _ := json.Marshal(text)
	return msg
}

// Message extracts the gateway's "message" field, falling back to the error text
func (e *UpstreamError) Message() string {
	var body struct {
		Message string `json:"message"`
	}
	if len(e.Body) > 0 && json.Unmarshal(e.Body, &body) == nil && body.Message != "" {
		return body.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Error()
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PaymentClient{
		hostURL:    strings.TrimRight(cfg.HostURL, "/"),
		merchantID: cfg.MerchantID,
		saltKey:    cfg.SaltKey,
		saltIndex:  cfg.SaltIndex,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// MerchantID returns the configured merchant id
func (pc *PaymentClient) MerchantID() string {
	return pc.merchantID
}

// Pay forwards a signed pay request and returns the gateway's raw JSON response.
func (pc *PaymentClient) Pay(ctx context.Context, req PayRequest) (json.RawMessage, error) {
	if req.MerchantID == "" {
		req.MerchantID = pc.merchantID
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pay request: %w", err)
	}

	body, err := json.Marshal(payEnvelope{Request: base64.StdEncoding.EncodeToString(payload)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pay envelope: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.hostURL+PayPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create pay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", Sign(payload, pc.saltKey, pc.saltIndex, PayPath))
	httpReq.Header.Set("accept", "application/json")

	return pc.do(httpReq, "initiate payment")
}

// Status fetches the gateway's view of a merchant transaction as raw JSON.
func (pc *PaymentClient) Status(ctx context.Context, merchantTransactionID string) (json.RawMessage, error) {
	path := StatusPathFor(pc.merchantID, merchantTransactionID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.hostURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", Sign(nil, pc.saltKey, pc.saltIndex, path))
	httpReq.Header.Set("X-MERCHANT-ID", pc.merchantID)
	httpReq.Header.Set("accept", "application/json")

	return pc.do(httpReq, "check payment status")
}

func (pc *PaymentClient) do(req *http.Request, op string) (json.RawMessage, error) {
	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: asJSON(data)}
	}

	if !json.Valid(data) {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("gateway returned invalid JSON")}
	}

	return json.RawMessage(data), nil
}

// asJSON keeps valid JSON bodies as-is and quotes anything else
func asJSON(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return quoted
}
