package models

import "time"

// NATS Event Types
const (
	EventPaymentInitiated     = "payment.initiated"
	EventPaymentStatusChecked = "payment.status_checked"
	EventPaymentFailed        = "payment.failed"
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingPersistFailed = "booking.persist_failed"
	EventDonationRecorded     = "donation.recorded"
	EventNotificationFailed   = "notification.failed"
)

// PaymentInitiatedEvent is published once the gateway has accepted a pay request
type PaymentInitiatedEvent struct {
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	AmountMinor           int64     `json:"amount_minor"`
	Timestamp             time.Time `json:"timestamp"`
}

// PaymentStatusCheckedEvent records the gateway's answer to a status check
type PaymentStatusCheckedEvent struct {
	MerchantTransactionID string           `json:"merchant_transaction_id"`
	Code                  string           `json:"code"`
	State                 TransactionState `json:"state"`
	Timestamp             time.Time        `json:"timestamp"`
}

// PaymentFailedEvent is published when the gateway reports a failed or abandoned payment
type PaymentFailedEvent struct {
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	Code                  string    `json:"code"`
	Reason                string    `json:"reason"`
	Timestamp             time.Time `json:"timestamp"`
}

// BookingConfirmedEvent is published once a paid booking has been stored
type BookingConfirmedEvent struct {
	BookingID             int64     `json:"booking_id"`
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	TransactionID         string    `json:"transaction_id"`
	EventTitle            string    `json:"event_title"`
	SeatCount             int       `json:"seat_count"`
	TotalAmount           float64   `json:"total_amount"`
	Timestamp             time.Time `json:"timestamp"`
}

// BookingPersistFailedEvent flags a paid transaction that has no booking row
type BookingPersistFailedEvent struct {
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	TransactionID         string    `json:"transaction_id"`
	CustomerEmail         string    `json:"customer_email"`
	Error                 string    `json:"error"`
	Timestamp             time.Time `json:"timestamp"`
}

// DonationRecordedEvent is published once a paid donation has been stored
type DonationRecordedEvent struct {
	DonationID            int64     `json:"donation_id"`
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	TransactionID         string    `json:"transaction_id"`
	Amount                float64   `json:"amount"`
	Timestamp             time.Time `json:"timestamp"`
}

// NotificationFailedEvent carries the stored booking whose confirmation email was not sent
type NotificationFailedEvent struct {
	Booking   Booking   `json:"booking"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
