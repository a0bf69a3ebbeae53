package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
)

type BookingService struct {
	bookings BookingStore
}

func NewBookingService(bookings BookingStore) *BookingService {
	return &BookingService{bookings: bookings}
}

// ListByEmail returns a customer's tickets, newest first
func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]models.ListBookingsResponseItem, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}

	bookings, err := s.bookings.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	result := make([]models.ListBookingsResponseItem, len(bookings))
	for i, booking := range bookings {
		result[i] = models.ListBookingsResponseItem{
			ID:             booking.ID,
			EventTitle:     booking.EventTitle,
			EventDate:      booking.EventDate,
			EventTime:      booking.EventTime,
			SelectedSeats:  booking.SelectedSeats,
			IsTicketActive: booking.IsTicketActive,
		}
	}

	return result, nil
}
