package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"boxoffice/internal/metrics"
	"boxoffice/internal/models"

	"github.com/nats-io/stan.go"
)

const notifyTimeout = 30 * time.Second

// Notifier re-sends confirmation emails for stored bookings
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, booking *models.Booking) error
}

type Handlers struct {
	notifier        Notifier
	maxRedeliveries int
}

func NewHandlers(notifier Notifier, maxRedeliveries int) *Handlers {
	if maxRedeliveries < 1 {
		maxRedeliveries = 1
	}
	return &Handlers{
		notifier:        notifier,
		maxRedeliveries: maxRedeliveries,
	}
}

// HandleNotificationFailed retries the confirmation email of a booking.
// Unacked messages come back after AckWait until the redelivery budget is spent.
func (h *Handlers) HandleNotificationFailed(m *stan.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if h.processNotification(ctx, m.Data, m.RedeliveryCount) {
		ack(m)
	}
}

// processNotification reports whether the message is done with and should be acked
func (h *Handlers) processNotification(ctx context.Context, data []byte, redeliveryCount uint32) bool {
	metrics.ConsumedMessages.WithLabelValues(models.EventNotificationFailed).Inc()

	var event models.NotificationFailedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal notification failed event", "error", err)
		return true
	}

	log := slog.With(
		"booking_id", event.Booking.ID,
		"customer_email", event.Booking.CustomerEmail,
		"attempt", redeliveryCount+1,
	)

	if err := h.notifier.SendBookingConfirmation(ctx, &event.Booking); err != nil {
		if int(redeliveryCount)+1 >= h.maxRedeliveries {
			metrics.NotificationRetries.WithLabelValues("gave_up").Inc()
			log.Error("Giving up on confirmation email", "error", err, "first_error", event.Error)
			return true
		}

		metrics.NotificationRetries.WithLabelValues("failed").Inc()
		log.Warn("Confirmation email retry failed, waiting for redelivery", "error", err)
		return false
	}

	metrics.NotificationRetries.WithLabelValues("sent").Inc()
	log.Info("Confirmation email sent on retry")
	return true
}

func (h *Handlers) HandlePaymentInitiated(m *stan.Msg) {
	var event models.PaymentInitiatedEvent
	if decode(models.EventPaymentInitiated, m.Data, &event) {
		slog.Info("Payment initiated",
			"merchant_transaction_id", event.MerchantTransactionID,
			"amount_minor", event.AmountMinor,
		)
	}
	ack(m)
}

func (h *Handlers) HandlePaymentStatusChecked(m *stan.Msg) {
	h.recordStatusCheck(m.Data)
	ack(m)
}

// recordStatusCheck counts status checks per transaction state
func (h *Handlers) recordStatusCheck(data []byte) bool {
	var event models.PaymentStatusCheckedEvent
	if !decode(models.EventPaymentStatusChecked, data, &event) {
		return false
	}
	state := event.State
	if state == "" {
		state = models.TransactionFailed
	}
	metrics.PaymentStatusChecks.WithLabelValues(string(state)).Inc()
	slog.Debug("Payment status checked",
		"merchant_transaction_id", event.MerchantTransactionID,
		"code", event.Code,
		"state", state,
	)
	return true
}

func (h *Handlers) HandlePaymentFailed(m *stan.Msg) {
	var event models.PaymentFailedEvent
	if decode(models.EventPaymentFailed, m.Data, &event) {
		slog.Info("Payment failed",
			"merchant_transaction_id", event.MerchantTransactionID,
			"code", event.Code,
			"reason", event.Reason,
		)
	}
	ack(m)
}

func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	var event models.BookingConfirmedEvent
	if decode(models.EventBookingConfirmed, m.Data, &event) {
		slog.Info("Booking confirmed",
			"booking_id", event.BookingID,
			"merchant_transaction_id", event.MerchantTransactionID,
			"transaction_id", event.TransactionID,
			"event_title", event.EventTitle,
			"seat_count", event.SeatCount,
			"total_amount", event.TotalAmount,
		)
	}
	ack(m)
}

// HandleBookingPersistFailed surfaces paid transactions without a booking row for manual reconciliation
func (h *Handlers) HandleBookingPersistFailed(m *stan.Msg) {
	var event models.BookingPersistFailedEvent
	if decode(models.EventBookingPersistFailed, m.Data, &event) {
		slog.Error("Paid transaction has no booking, manual reconciliation required",
			"merchant_transaction_id", event.MerchantTransactionID,
			"transaction_id", event.TransactionID,
			"customer_email", event.CustomerEmail,
			"error", event.Error,
		)
	}
	ack(m)
}

func (h *Handlers) HandleDonationRecorded(m *stan.Msg) {
	var event models.DonationRecordedEvent
	if decode(models.EventDonationRecorded, m.Data, &event) {
		slog.Info("Donation recorded",
			"donation_id", event.DonationID,
			"merchant_transaction_id", event.MerchantTransactionID,
			"amount", event.Amount,
		)
	}
	ack(m)
}

func decode(subject string, data []byte, dest any) bool {
	metrics.ConsumedMessages.WithLabelValues(subject).Inc()
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Error("Failed to unmarshal event", "subject", subject, "error", err)
		return false
	}
	return true
}

func ack(m *stan.Msg) {
	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "subject", m.Subject, "sequence", m.Sequence, "error", err)
	}
}
