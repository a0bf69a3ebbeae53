package models

import (
	"time"
)

// Event represents a ticketed event. The table is read-only for this service.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	Venue       *string   `json:"venue" db:"venue"`
	Price       *float64  `json:"price" db:"price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PricePerSeat returns the event price, or fallback when the event has none.
func (e *Event) PricePerSeat(fallback float64) float64 {
	if e.Price != nil && *e.Price > 0 {
		return *e.Price
	}
	return fallback
}

// Booking represents a persisted ticket purchase
type Booking struct {
	ID             int64     `json:"id" db:"id"`
	EventTitle     string    `json:"event_title" db:"event_title"`
	EventDate      string    `json:"event_date" db:"event_date"`
	EventTime      string    `json:"event_time" db:"event_time"`
	SelectedSeats  []string  `json:"selected_seats" db:"selected_seats"`
	SeatCount      int       `json:"seat_count" db:"seat_count"`
	CustomerName   string    `json:"customer_name" db:"customer_name"`
	CustomerEmail  string    `json:"customer_email" db:"customer_email"`
	CustomerPhone  string    `json:"customer_phone" db:"customer_phone"`
	TotalAmount    float64   `json:"total_amount" db:"total_amount"`
	TransactionID  *string   `json:"transaction_id" db:"transaction_id"`
	IsTicketActive bool      `json:"is_ticket_active" db:"is_ticket_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Donation represents a persisted donation
type Donation struct {
	ID            int64     `json:"id" db:"id"`
	DonorName     string    `json:"donor_name" db:"donor_name"`
	DonorEmail    string    `json:"donor_email" db:"donor_email"`
	DonorPhone    string    `json:"donor_phone" db:"donor_phone"`
	Amount        float64   `json:"amount" db:"amount"`
	TransactionID *string   `json:"transaction_id" db:"transaction_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SeatStatus is the derived state of a seat for one event
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSelected  SeatStatus = "selected"
	SeatBooked    SeatStatus = "booked"
)

// Seat is a position in the venue layout. Immutable once generated.
type Seat struct {
	ID     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
}

// SeatView is a Seat with its status, recomputed on every load
type SeatView struct {
	Seat
	Status SeatStatus `json:"status"`
}
