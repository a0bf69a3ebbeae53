package repository

import (
	"boxoffice/internal/database"
)

type Repositories struct {
	Events    *EventRepository
	Bookings  *BookingRepository
	Donations *DonationRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:    NewEventRepository(db),
		Bookings:  NewBookingRepository(db),
		Donations: NewDonationRepository(db),
	}
}
