package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
	"boxoffice/internal/seating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog() (*fakeEventStore, *fakeBookingStore) {
	price := 750.0
	events := &fakeEventStore{events: map[int64]*models.Event{
		1: {ID: 1, Title: "Jazz Night", Date: "2026-11-01", Time: "19:00", Price: &price},
		2: {ID: 2, Title: "Rock Show", Date: "2026-11-02", Time: "20:00"},
	}}
	bookings := &fakeBookingStore{bookings: []models.Booking{
		{ID: 1, EventTitle: "Jazz Night", SelectedSeats: []string{"A1", "A2"}, CustomerEmail: "a@example.com"},
		{ID: 2, EventTitle: "Rock Show", SelectedSeats: []string{"A1"}, CustomerEmail: "b@example.com"},
	}}
	return events, bookings
}

func TestSeatMap(t *testing.T) {
	events, bookings := newCatalog()
	svc := NewEventService(events, bookings, nil, nil, 0, seating.DefaultLayout())

	resp, err := svc.SeatMap(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, resp.Seats, 349)
	assert.Equal(t, 2, resp.Booked)
	assert.Equal(t, 347, resp.Available)
	assert.Equal(t, models.SeatBooked, resp.Seats[0].Status)
	assert.Equal(t, models.SeatAvailable, resp.Seats[2].Status)
}

func TestGetMissingEvent(t *testing.T) {
	events, bookings := newCatalog()
	svc := NewEventService(events, bookings, nil, nil, 0, seating.DefaultLayout())

	_, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

	_, err = svc.SeatMap(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestListUsesCacheForUnfilteredPages(t *testing.T) {
	events, bookings := newCatalog()
	cache := &memCache{}
	svc := NewEventService(events, bookings, nil, cache, time.Minute, seating.DefaultLayout())

	first, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	second, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, events.listCalls)
	require.Len(t, first, 2)
	require.NotNil(t, first[0].Price)
	assert.Equal(t, 750.0, *first[0].Price)
}

func TestListSearchFallsBackToDatabase(t *testing.T) {
	events, bookings := newCatalog()
	searcher := &fakeSearcher{err: errors.New("es down")}
	svc := NewEventService(events, bookings, searcher, nil, 0, seating.DefaultLayout())

	result, err := svc.List(context.Background(), "jazz", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 1, events.listCalls)
	assert.Len(t, result, 2)
}

func TestListSearchUsesSearcher(t *testing.T) {
	events, bookings := newCatalog()
	searcher := &fakeSearcher{events: []models.Event{{ID: 1, Title: "Jazz Night"}}}
	svc := NewEventService(events, bookings, searcher, &memCache{}, time.Minute, seating.DefaultLayout())

	result, err := svc.List(context.Background(), "jazz", 1, 20)
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Zero(t, events.listCalls)
}

func TestListBookingsByEmail(t *testing.T) {
	_, bookings := newCatalog()
	svc := NewBookingService(bookings)

	_, err := svc.ListByEmail(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrEmailRequired)

	result, err := svc.ListByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, []string{"A1", "A2"}, result[0].SelectedSeats)
}
