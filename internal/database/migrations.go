package database

import (
	"fmt"
	"log/slog"
)

// RunMigrations creates the tables the booking flow reads and writes.
// bookings and donations deliberately carry no unique constraint on transaction_id.
func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	for i, migration := range Migrations() {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migrations returns the ordered migration statements
func Migrations() []string {
	return []string{
		createEventsTable,
		createBookingsTable,
		createDonationsTable,
		createProfilesTable,
		createBookingsEventTitleIndex,
		createBookingsCustomerEmailIndex,
	}
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT,
    date VARCHAR(50) NOT NULL,
    time VARCHAR(50) NOT NULL,
    venue VARCHAR(255),
    price NUMERIC(10,2),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id BIGSERIAL PRIMARY KEY,
    event_title VARCHAR(500) NOT NULL,
    event_date VARCHAR(50) NOT NULL,
    event_time VARCHAR(50) NOT NULL,
    selected_seats TEXT[] NOT NULL DEFAULT '{}',
    seat_count INTEGER NOT NULL,
    customer_name VARCHAR(255) NOT NULL,
    customer_email VARCHAR(255) NOT NULL,
    customer_phone VARCHAR(50) NOT NULL,
    total_amount NUMERIC(10,2) NOT NULL,
    transaction_id VARCHAR(255),
    is_ticket_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createDonationsTable = `
CREATE TABLE IF NOT EXISTS donations (
    id BIGSERIAL PRIMARY KEY,
    donor_name VARCHAR(255) NOT NULL,
    donor_email VARCHAR(255) NOT NULL,
    donor_phone VARCHAR(50) NOT NULL,
    amount NUMERIC(10,2) NOT NULL,
    transaction_id VARCHAR(255),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createProfilesTable = `
CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY,
    full_name VARCHAR(255),
    phone VARCHAR(50),
    address TEXT,
    profession VARCHAR(255)
);`

const createBookingsEventTitleIndex = `
CREATE INDEX IF NOT EXISTS idx_bookings_event_title ON bookings(event_title);`

const createBookingsCustomerEmailIndex = `
CREATE INDEX IF NOT EXISTS idx_bookings_customer_email ON bookings(customer_email, created_at DESC);`
