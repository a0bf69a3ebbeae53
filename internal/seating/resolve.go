package seating

import (
	"boxoffice/internal/models"
)

// Resolve marks each layout seat booked when any booking for eventTitle holds it.
// Bookings are matched by title string, so renamed or duplicate titles share seats.
func Resolve(eventTitle string, layout []models.Seat, bookings []models.Booking) []models.SeatView {
	booked := BookedSeatIDs(eventTitle, bookings)

	views := make([]models.SeatView, len(layout))
	for i, seat := range layout {
		status := models.SeatAvailable
		if booked[seat.ID] {
			status = models.SeatBooked
		}
		views[i] = models.SeatView{Seat: seat, Status: status}
	}
	return views
}

// BookedSeatIDs collects the seat ids held by bookings for eventTitle
func BookedSeatIDs(eventTitle string, bookings []models.Booking) map[string]bool {
	booked := make(map[string]bool)
	for _, b := range bookings {
		if b.EventTitle != eventTitle {
			continue
		}
		for _, id := range b.SelectedSeats {
			booked[id] = true
		}
	}
	return booked
}

// Count returns how many views are booked and available
func Count(views []models.SeatView) (booked, available int) {
	for _, v := range views {
		switch v.Status {
		case models.SeatBooked:
			booked++
		case models.SeatAvailable:
			available++
		}
	}
	return booked, available
}
