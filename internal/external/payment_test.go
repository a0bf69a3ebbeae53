package external

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaymentClient(url string) *PaymentClient {
	return NewPaymentClient(PaymentConfig{
		HostURL:    url,
		MerchantID: "MERCHANT",
		SaltKey:    "salt-key",
		SaltIndex:  "1",
	})
}

func TestPaySendsSignedEnvelope(t *testing.T) {
	var captured PayRequest
	var verify string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PayPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var env payEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		raw, err := base64.StdEncoding.DecodeString(env.Request)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &captured))
		verify = r.Header.Get("X-VERIFY")
		assert.Equal(t, Sign(raw, "salt-key", "1", PayPath), verify)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"code":"PAYMENT_INITIATED","data":{"instrumentResponse":{"redirectInfo":{"url":"https://pay.example/x"}}}}`))
	}))
	defer server.Close()

	client := newTestPaymentClient(server.URL)
	resp, err := client.Pay(context.Background(), PayRequest{
		MerchantTransactionID: "MUID-1",
		MerchantUserID:        "MUID-2",
		Amount:                100000,
		RedirectURL:           "http://localhost:8080/payment-status/MUID-1",
		RedirectMode:          RedirectModeRedirect,
		CallbackURL:           "https://webhook.site/callback-url",
		PaymentInstrument:     PaymentInstrument{Type: InstrumentPayPage},
	})

	require.NoError(t, err)
	assert.Contains(t, string(resp), "https://pay.example/x")
	assert.Equal(t, "MERCHANT", captured.MerchantID)
	assert.Equal(t, int64(100000), captured.Amount)
	assert.Equal(t, "REDIRECT", captured.RedirectMode)
	assert.Equal(t, "PAY_PAGE", captured.PaymentInstrument.Type)
	assert.NotEmpty(t, verify)
}

func TestStatusSendsMerchantHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pg/v1/status/MERCHANT/MUID-9", r.URL.Path)
		assert.Equal(t, "MERCHANT", r.Header.Get("X-MERCHANT-ID"))
		assert.Equal(t, Sign(nil, "salt-key", "1", "/pg/v1/status/MERCHANT/MUID-9"), r.Header.Get("X-VERIFY"))
		w.Write([]byte(`{"success":true,"code":"PAYMENT_SUCCESS","data":{"transactionId":"T1","amount":100000}}`))
	}))
	defer server.Close()

	resp, err := newTestPaymentClient(server.URL).Status(context.Background(), "MUID-9")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"code":"PAYMENT_SUCCESS","data":{"transactionId":"T1","amount":100000}}`, string(resp))
}

func TestUpstreamErrorCarriesGatewayPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"code":"KEY_NOT_CONFIGURED","message":"Key not found for the merchant"}`))
	}))
	defer server.Close()

	_, err := newTestPaymentClient(server.URL).Status(context.Background(), "MUID-1")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.JSONEq(t, `{"success":false,"code":"KEY_NOT_CONFIGURED","message":"Key not found for the merchant"}`, string(upstream.Payload()))
	assert.Equal(t, "Key not found for the merchant", upstream.Message())
}

func TestUpstreamErrorNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	_, err := newTestPaymentClient(server.URL).Pay(context.Background(), PayRequest{Amount: 100})

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, `"bad gateway"`, string(upstream.Payload()))
}

func TestUpstreamErrorTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestPaymentClient(url).Status(context.Background(), "MUID-1")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Zero(t, upstream.StatusCode)
	assert.NotNil(t, upstream.Err)

	var msg string
	require.NoError(t, json.Unmarshal(upstream.Payload(), &msg))
	assert.NotEmpty(t, msg)
}
