package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boxoffice/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClientInitiate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payment/initiate", r.URL.Path)

		var body models.InitiatePaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.Amount)
		assert.Equal(t, 1000.0, *body.Amount)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"code":"PAYMENT_INITIATED","data":{"merchantTransactionId":"MUID-1","instrumentResponse":{"type":"PAY_PAGE","redirectInfo":{"url":"https://pay.example/x","method":"GET"}}}}`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL+"/", time.Second)
	resp, err := client.Initiate(context.Background(), 1000)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "MUID-1", resp.Data.MerchantTransactionID)
	assert.Equal(t, "https://pay.example/x", resp.RedirectURL())
}

func TestAPIClientStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payment/status/MUID-1", r.URL.Path)
		w.Write([]byte(`{"success":true,"code":"PAYMENT_SUCCESS","data":{"transactionId":"T1","amount":100000}}`))
	}))
	defer server.Close()

	resp, err := NewAPIClient(server.URL, time.Second).Status(context.Background(), "MUID-1")
	require.NoError(t, err)

	assert.Equal(t, models.TransactionSuccess, resp.State())
	assert.Equal(t, "T1", resp.Data.TransactionID)
	assert.Equal(t, 1000.0, resp.Data.AmountMajor())
}

func TestAPIClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payment/initiate":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Amount is required"}`))
		case "/api/payment/status/MUID-1":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"Error checking payment status","error":{"success":false,"message":"Key not found"}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream down`))
		}
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second)

	_, err := client.Initiate(context.Background(), 0)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Amount is required", apiErr.Error())

	_, err = client.Status(context.Background(), "MUID-1")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Key not found", apiErr.UpstreamMessage())
	assert.Equal(t, "Error checking payment status: Key not found", apiErr.Error())

	_, err = client.Seats(context.Background(), 3)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "upstream down")
}

func TestAPIErrorStringDetail(t *testing.T) {
	err := &APIError{Message: "Error initiating payment", Detail: json.RawMessage(`"connection refused"`)}
	assert.Equal(t, "connection refused", err.UpstreamMessage())
	assert.Equal(t, "connection refused", errorMessage(err))
	assert.Equal(t, "plain", errorMessage(errors.New("plain")))
}

func TestAPIClientCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/events":
			assert.Equal(t, "jazz", r.URL.Query().Get("query"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			w.Write([]byte(`[{"id":1,"title":"Jazz Night","date":"2026-11-01","time":"19:00"}]`))
		case "/api/bookings":
			assert.Equal(t, "a@example.com", r.URL.Query().Get("email"))
			w.Write([]byte(`[{"id":4,"event_title":"Jazz Night","selected_seats":["A1"],"is_ticket_active":true}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second)

	events, err := client.Events(context.Background(), "jazz", 2, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Jazz Night", events[0].Title)

	bookings, err := client.Bookings(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, []string{"A1"}, bookings[0].SelectedSeats)
}
