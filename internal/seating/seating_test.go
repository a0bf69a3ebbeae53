package seating

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"boxoffice/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutSize(t *testing.T) {
	seats := DefaultLayout().Generate()

	require.Len(t, seats, 349)
	assert.Equal(t, models.Seat{ID: "A1", Row: "A", Number: 1}, seats[0])
	assert.Equal(t, models.Seat{ID: "LAST9", Row: "LAST", Number: 9}, seats[len(seats)-1])

	ids := make(map[string]bool)
	for _, s := range seats {
		assert.False(t, ids[s.ID], "duplicate seat %s", s.ID)
		ids[s.ID] = true
	}
	assert.True(t, ids["I28"])
	assert.False(t, ids["J23"])
	assert.True(t, ids["M22"])
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "hall.yaml")
	require.NoError(t, os.WriteFile(good, []byte("sections:\n  - rows: [A, B]\n    seats: 3\n  - rows: [BALCONY]\n    seats: 2\n"), 0o600))

	layout, err := LoadLayout(good)
	require.NoError(t, err)
	seats := layout.Generate()
	assert.Len(t, seats, 8)
	assert.Equal(t, "BALCONY2", seats[7].ID)

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("sections:\n  - rows: [A]\n    seats: 3\n  - rows: [A]\n    seats: 2\n"), 0o600))
	_, err = LoadLayout(dup)
	assert.ErrorContains(t, err, "duplicate row")

	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, []byte("sections:\n  - rows: [A]\n    seats: 0\n"), 0o600))
	_, err = LoadLayout(zero)
	assert.ErrorContains(t, err, "seats must be positive")

	layout, err = LoadLayout("")
	require.NoError(t, err)
	assert.Equal(t, 349, layout.Size())
}

func TestResolveMatchesByTitle(t *testing.T) {
	layout := DefaultLayout().Generate()
	bookings := []models.Booking{
		{EventTitle: "Jazz Night", SelectedSeats: []string{"A1", "A2"}},
		{EventTitle: "Jazz Night", SelectedSeats: []string{"A2", "LAST3"}},
		{EventTitle: "Rock Show", SelectedSeats: []string{"B5"}},
		{EventTitle: "Jazz Night", SelectedSeats: []string{"Z99"}},
	}

	views := Resolve("Jazz Night", layout, bookings)

	require.Len(t, views, len(layout))
	status := make(map[string]models.SeatStatus)
	for _, v := range views {
		status[v.ID] = v.Status
	}
	assert.Equal(t, models.SeatBooked, status["A1"])
	assert.Equal(t, models.SeatBooked, status["A2"])
	assert.Equal(t, models.SeatBooked, status["LAST3"])
	assert.Equal(t, models.SeatAvailable, status["B5"], "other event's booking must not leak")
	_, unknown := status["Z99"]
	assert.False(t, unknown, "seats outside the layout are ignored")

	booked, available := Count(views)
	assert.Equal(t, 3, booked)
	assert.Equal(t, 346, available)
}

func TestResolveProperty(t *testing.T) {
	layout := DefaultLayout().Generate()
	titles := []string{"Jazz Night", "Rock Show", "Jazz night"}
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 50; iter++ {
		var bookings []models.Booking
		nBookings := rng.Intn(10)
		for b := 0; b < nBookings; b++ {
			var seats []string
			nSeats := 1 + rng.Intn(5)
			for s := 0; s < nSeats; s++ {
				seats = append(seats, layout[rng.Intn(len(layout))].ID)
			}
			bookings = append(bookings, models.Booking{EventTitle: titles[rng.Intn(len(titles))], SelectedSeats: seats})
		}

		views := Resolve("Jazz Night", layout, bookings)
		require.Len(t, views, len(layout))

		seen := make(map[string]bool)
		for i, v := range views {
			require.False(t, seen[v.ID])
			seen[v.ID] = true
			assert.Equal(t, layout[i], v.Seat)

			inBooking := false
			for _, b := range bookings {
				if b.EventTitle != "Jazz Night" {
					continue
				}
				for _, id := range b.SelectedSeats {
					if id == v.ID {
						inBooking = true
					}
				}
			}
			assert.Equal(t, inBooking, v.Status == models.SeatBooked, "seat %s", v.ID)
		}
	}
}
