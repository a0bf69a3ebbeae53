package checkout

import (
	"encoding/json"
	"fmt"

	"boxoffice/internal/models"
)

const (
	pendingBookingPrefix  = "pending_booking_"
	pendingDonationPrefix = "pending_donation_"
)

func BookingKey(merchantTransactionID string) string {
	return pendingBookingPrefix + merchantTransactionID
}

func DonationKey(merchantTransactionID string) string {
	return pendingDonationPrefix + merchantTransactionID
}

// PendingBooking is the booking intent staged before the payment redirect.
// Field names follow the bookings table.
type PendingBooking struct {
	EventTitle    string   `json:"event_title"`
	EventDate     string   `json:"event_date"`
	EventTime     string   `json:"event_time"`
	SelectedSeats []string `json:"selected_seats"`
	SeatCount     int      `json:"seat_count"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	CustomerPhone string   `json:"customer_phone"`
	TotalAmount   float64  `json:"total_amount"`
}

// Booking promotes the intent to a persisted record for a paid transaction
func (p PendingBooking) Booking(transactionID string) *models.Booking {
	seats := make([]string, len(p.SelectedSeats))
	copy(seats, p.SelectedSeats)

	booking := &models.Booking{
		EventTitle:     p.EventTitle,
		EventDate:      p.EventDate,
		EventTime:      p.EventTime,
		SelectedSeats:  seats,
		SeatCount:      p.SeatCount,
		CustomerName:   p.CustomerName,
		CustomerEmail:  p.CustomerEmail,
		CustomerPhone:  p.CustomerPhone,
		TotalAmount:    p.TotalAmount,
		IsTicketActive: true,
	}
	if transactionID != "" {
		booking.TransactionID = &transactionID
	}
	return booking
}

// PendingDonation is the donation intent staged before the payment redirect
type PendingDonation struct {
	DonorName  string  `json:"donor_name"`
	DonorEmail string  `json:"donor_email"`
	DonorPhone string  `json:"donor_phone"`
	Amount     float64 `json:"amount"`
}

func (p PendingDonation) Donation(transactionID string) *models.Donation {
	donation := &models.Donation{
		DonorName:  p.DonorName,
		DonorEmail: p.DonorEmail,
		DonorPhone: p.DonorPhone,
		Amount:     p.Amount,
	}
	if transactionID != "" {
		donation.TransactionID = &transactionID
	}
	return donation
}

func stage(storage LocalStorage, key string, intent any) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode pending purchase: %w", err)
	}
	if err := storage.SetItem(key, string(data)); err != nil {
		return fmt.Errorf("failed to stage pending purchase: %w", err)
	}
	return nil
}

// load reads and decodes a staged intent. A missing key reports false.
func load(storage LocalStorage, key string, dest any) (bool, error) {
	raw, ok, err := storage.GetItem(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", errCorruptPending, key, err)
	}
	return true, nil
}
