package service

import (
	"time"

	"boxoffice/internal/messaging"
	"boxoffice/internal/seating"
)

type Services struct {
	Payments *PaymentService
	Events   *EventService
	Bookings *BookingService
}

// Dependencies are the collaborators the services are built from.
// Publisher, Searcher and Cache are optional.
type Dependencies struct {
	Gateway     Gateway
	Publisher   messaging.Publisher
	Events      EventStore
	Bookings    BookingStore
	Searcher    EventSearcher
	Cache       Cache
	CacheTTL    time.Duration
	Layout      seating.Layout
	ClientURL   string
	CallbackURL string
}

func NewServices(deps Dependencies) *Services {
	payments := NewPaymentService(deps.Gateway, deps.ClientURL, deps.CallbackURL)
	payments.publisher = deps.Publisher

	return &Services{
		Payments: payments,
		Events:   NewEventService(deps.Events, deps.Bookings, deps.Searcher, deps.Cache, deps.CacheTTL, deps.Layout),
		Bookings: NewBookingService(deps.Bookings),
	}
}
