package repository

import (
	"context"
	"fmt"

	"boxoffice/internal/database"
	"boxoffice/internal/models"

	"github.com/lib/pq"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, event_title, event_date, event_time, selected_seats, seat_count,
	customer_name, customer_email, customer_phone, total_amount, transaction_id,
	is_ticket_active, created_at`

// Create inserts a booking exactly once. There is no uniqueness check on transaction_id.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (event_title, event_date, event_time, selected_seats, seat_count,
			customer_name, customer_email, customer_phone, total_amount, transaction_id, is_ticket_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		booking.EventTitle,
		booking.EventDate,
		booking.EventTime,
		pq.Array(booking.SelectedSeats),
		booking.SeatCount,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.TotalAmount,
		booking.TransactionID,
		booking.IsTicketActive,
	).Scan(&booking.ID, &booking.CreatedAt)
}

// ListByEventTitle returns every booking whose event title matches exactly
func (r *BookingRepository) ListByEventTitle(ctx context.Context, title string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE event_title = $1 ORDER BY id`
	return r.list(ctx, query, title)
}

// ListByEmail returns a customer's bookings, newest first
func (r *BookingRepository) ListByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE customer_email = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, email)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID,
			&b.EventTitle,
			&b.EventDate,
			&b.EventTime,
			pq.Array(&b.SelectedSeats),
			&b.SeatCount,
			&b.CustomerName,
			&b.CustomerEmail,
			&b.CustomerPhone,
			&b.TotalAmount,
			&b.TransactionID,
			&b.IsTicketActive,
			&b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}
