package validation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boxoffice/internal/api"
	"boxoffice/internal/external"
	"boxoffice/internal/models"
	"boxoffice/internal/seating"
	"boxoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type unusedGateway struct{ calls int }

func (g *unusedGateway) Pay(context.Context, external.PayRequest) (json.RawMessage, error) {
	g.calls++
	return json.RawMessage(`{}`), nil
}

func (g *unusedGateway) Status(context.Context, string) (json.RawMessage, error) {
	g.calls++
	return json.RawMessage(`{}`), nil
}

type oneEvent struct{}

func (oneEvent) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if id != 1 {
		return nil, nil
	}
	return &models.Event{ID: 1, Title: "Jazz Night"}, nil
}

func (oneEvent) List(context.Context, string, int, int) ([]models.Event, error) {
	return []models.Event{{ID: 1, Title: "Jazz Night"}}, nil
}

type noBookings struct{}

func (noBookings) ListByEventTitle(context.Context, string) ([]models.Booking, error) {
	return nil, nil
}

func (noBookings) ListByEmail(context.Context, string) ([]models.Booking, error) {
	return nil, nil
}

func TestValidateAllAgainstRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gateway := &unusedGateway{}
	router := api.NewRouter(service.NewServices(service.Dependencies{
		Gateway:  gateway,
		Events:   oneEvent{},
		Bookings: noBookings{},
		Layout:   seating.DefaultLayout(),
	}), api.RouterOptions{})

	server := httptest.NewServer(router)
	defer server.Close()

	assert.NoError(t, RunValidation(context.Background(), server.URL))
	assert.Zero(t, gateway.calls)
}

func TestValidateAllReportsBrokenEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		// accepts anything, so the 400 checks fail
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := NewAPIValidator(server.URL).ValidateAll(context.Background())
	assert.ErrorContains(t, err, "payment validation failed")
}

func TestValidateAllUnreachable(t *testing.T) {
	err := NewAPIValidator("http://127.0.0.1:1").ValidateAll(context.Background())
	assert.ErrorContains(t, err, "health validation failed")
}
