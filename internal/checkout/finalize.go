package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/models"
)

const maxPollBackoff = 30 * time.Second

var errCorruptPending = errors.New("pending purchase is corrupt")

// Outcome is the terminal state of a finalization run
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeFailed         Outcome = "failed"
)

const (
	msgNoTransactionID  = "No transaction ID found."
	msgPaymentFailed    = "The payment was not successful."
	msgPaymentPending   = "Payment is still pending. Please check your email or profile later."
	msgBookingConfirmed = "Booking confirmed and confirmation email sent!"
	msgEmailFailed      = "Your booking is confirmed, but we could not send the confirmation email. Please check your tickets in your profile."
	msgDonationThanks   = "Thank you for your generous donation!"
	msgNoPendingRecord  = "Payment successful! Your confirmation will be available in your email or profile."
	msgInterrupted      = "Finalization was interrupted. Run it again to check the payment."
	msgStorageFailed    = "We could not read your pending purchase. Run finalization again once local storage is available."
)

type BookingWriter interface {
	Create(ctx context.Context, booking *models.Booking) error
}

type DonationWriter interface {
	Create(ctx context.Context, donation *models.Donation) error
}

// Notifier sends the confirmation email for a stored booking
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, booking *models.Booking) error
}

type FinalizerConfig struct {
	// SettleDelay is waited once before the first status check
	SettleDelay time.Duration
	// PollInterval is the first wait between status checks while the payment is pending; it doubles per attempt
	PollInterval time.Duration
	PollAttempts int
}

// Result is what the customer is shown once finalization ends
type Result struct {
	Outcome     Outcome
	Message     string
	Transaction *models.GatewayData
	Booking     *models.Booking
	Donation    *models.Donation
}

// Finalizer reconciles the gateway status of a merchant transaction with the
// purchase intent staged in local storage.
type Finalizer struct {
	api       PaymentAPI
	storage   LocalStorage
	bookings  BookingWriter
	donations DonationWriter
	notifier  Notifier
	publisher messaging.Publisher
	cfg       FinalizerConfig
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewFinalizer wires the workflow. notifier and publisher may be nil.
func NewFinalizer(api PaymentAPI, storage LocalStorage, bookings BookingWriter, donations DonationWriter, notifier Notifier, publisher messaging.Publisher, cfg FinalizerConfig) *Finalizer {
	if cfg.PollAttempts < 1 {
		cfg.PollAttempts = 1
	}

	return &Finalizer{
		api:       api,
		storage:   storage,
		bookings:  bookings,
		donations: donations,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		sleep:     sleepContext,
	}
}

// Finalize runs the workflow for one merchant transaction id. Every terminal
// branch removes the staged intent, except an interrupted run or a storage read
// failure which leave it for the next attempt.
func (f *Finalizer) Finalize(ctx context.Context, merchantTransactionID string) *Result {
	merchantTransactionID = strings.TrimSpace(merchantTransactionID)
	if merchantTransactionID == "" {
		return &Result{Outcome: OutcomeFailed, Message: msgNoTransactionID}
	}

	ctx = logger.ContextWithTransactionID(ctx, merchantTransactionID)
	log := logger.WithContext(ctx)

	booking, donation, err := f.lookup(ctx, merchantTransactionID)
	if err != nil {
		log.Error("Failed to read pending purchase, keeping it for the next run", "error", err)
		return &Result{Outcome: OutcomeFailed, Message: msgStorageFailed}
	}
	log.Info("Finalizing transaction", "pending_booking", booking != nil, "pending_donation", donation != nil)

	if err := f.sleep(ctx, f.cfg.SettleDelay); err != nil {
		return interrupted(log, err)
	}

	status, err := f.pollStatus(ctx, merchantTransactionID)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(log, err)
		}
		log.Error("Failed to check payment status", "error", err)
		f.clear(ctx, merchantTransactionID)
		return &Result{Outcome: OutcomeFailed, Message: errorMessage(err)}
	}

	switch status.State() {
	case models.TransactionPending:
		log.Warn("Payment still pending after polling", "attempts", f.cfg.PollAttempts)
		f.clear(ctx, merchantTransactionID)
		f.publish(ctx, models.EventPaymentFailed, models.PaymentFailedEvent{
			MerchantTransactionID: merchantTransactionID,
			Code:                  status.Code,
			Reason:                msgPaymentPending,
			Timestamp:             time.Now(),
		})
		return &Result{Outcome: OutcomeFailed, Message: msgPaymentPending, Transaction: &status.Data}

	case models.TransactionFailed:
		message := status.Message
		if message == "" {
			message = msgPaymentFailed
		}
		log.Info("Payment was not successful", "code", status.Code)
		f.clear(ctx, merchantTransactionID)
		f.publish(ctx, models.EventPaymentFailed, models.PaymentFailedEvent{
			MerchantTransactionID: merchantTransactionID,
			Code:                  status.Code,
			Reason:                message,
			Timestamp:             time.Now(),
		})
		return &Result{Outcome: OutcomeFailed, Message: message, Transaction: &status.Data}
	}

	switch {
	case booking != nil:
		return f.finalizeBooking(ctx, merchantTransactionID, status, booking)
	case donation != nil:
		return f.finalizeDonation(ctx, merchantTransactionID, status, donation)
	default:
		log.Info("Payment succeeded but no pending purchase was found")
		return &Result{Outcome: OutcomeSuccess, Message: msgNoPendingRecord, Transaction: &status.Data}
	}
}

func (f *Finalizer) finalizeBooking(ctx context.Context, merchantTransactionID string, status *models.GatewayResponse, intent *PendingBooking) *Result {
	log := logger.WithContext(ctx)
	transactionID := status.Data.TransactionID
	record := intent.Booking(transactionID)

	err := f.bookings.Create(ctx, record)
	f.clear(ctx, merchantTransactionID)

	if err != nil {
		log.Error("Payment succeeded but booking was not saved", "error", err, "transaction_id", transactionID)
		f.publish(ctx, models.EventBookingPersistFailed, models.BookingPersistFailedEvent{
			MerchantTransactionID: merchantTransactionID,
			TransactionID:         transactionID,
			CustomerEmail:         intent.CustomerEmail,
			Error:                 err.Error(),
			Timestamp:             time.Now(),
		})
		return &Result{
			Outcome:     OutcomePartialSuccess,
			Message:     fmt.Sprintf("Payment succeeded, but we could not save your booking. Please contact support with transaction ID %s.", supportReference(transactionID, merchantTransactionID)),
			Transaction: &status.Data,
		}
	}

	log.Info("Booking saved", "booking_id", record.ID, "seat_count", record.SeatCount)
	f.publish(ctx, models.EventBookingConfirmed, models.BookingConfirmedEvent{
		BookingID:             record.ID,
		MerchantTransactionID: merchantTransactionID,
		TransactionID:         transactionID,
		EventTitle:            record.EventTitle,
		SeatCount:             record.SeatCount,
		TotalAmount:           record.TotalAmount,
		Timestamp:             time.Now(),
	})

	if err := f.notify(ctx, record); err != nil {
		log.Error("Booking saved but confirmation email failed", "error", err, "booking_id", record.ID)
		f.publish(ctx, models.EventNotificationFailed, models.NotificationFailedEvent{
			Booking:   *record,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return &Result{Outcome: OutcomePartialSuccess, Message: msgEmailFailed, Transaction: &status.Data, Booking: record}
	}

	return &Result{Outcome: OutcomeSuccess, Message: msgBookingConfirmed, Transaction: &status.Data, Booking: record}
}

// finalizeDonation stores the donation. Donations send no confirmation email.
func (f *Finalizer) finalizeDonation(ctx context.Context, merchantTransactionID string, status *models.GatewayResponse, intent *PendingDonation) *Result {
	log := logger.WithContext(ctx)
	transactionID := status.Data.TransactionID
	record := intent.Donation(transactionID)

	err := f.donations.Create(ctx, record)
	f.clear(ctx, merchantTransactionID)

	if err != nil {
		log.Error("Payment succeeded but donation was not saved", "error", err, "transaction_id", transactionID)
		return &Result{
			Outcome:     OutcomePartialSuccess,
			Message:     fmt.Sprintf("Payment succeeded, but we could not record your donation. Please contact support with transaction ID %s.", supportReference(transactionID, merchantTransactionID)),
			Transaction: &status.Data,
		}
	}

	log.Info("Donation saved", "donation_id", record.ID, "amount", record.Amount)
	f.publish(ctx, models.EventDonationRecorded, models.DonationRecordedEvent{
		DonationID:            record.ID,
		MerchantTransactionID: merchantTransactionID,
		TransactionID:         transactionID,
		Amount:                record.Amount,
		Timestamp:             time.Now(),
	})

	return &Result{Outcome: OutcomeSuccess, Message: msgDonationThanks, Transaction: &status.Data, Donation: record}
}

// pollStatus checks the gateway until the payment leaves the pending state or
// the attempts run out, backing off exponentially between checks.
func (f *Finalizer) pollStatus(ctx context.Context, merchantTransactionID string) (*models.GatewayResponse, error) {
	wait := f.cfg.PollInterval
	for attempt := 1; ; attempt++ {
		status, err := f.api.Status(ctx, merchantTransactionID)
		if err != nil {
			return nil, err
		}
		if status.State() != models.TransactionPending || attempt >= f.cfg.PollAttempts {
			return status, nil
		}

		logger.WithContext(ctx).Debug("Payment pending, polling again", "attempt", attempt, "wait", wait)
		if err := f.sleep(ctx, wait); err != nil {
			return nil, err
		}
		wait = min(wait*2, maxPollBackoff)
	}
}

// lookup reads the staged intents. Corrupt entries are dropped and treated as
// absent. A storage failure is returned so the entries survive for another run.
func (f *Finalizer) lookup(ctx context.Context, merchantTransactionID string) (*PendingBooking, *PendingDonation, error) {
	log := logger.WithContext(ctx)

	var booking PendingBooking
	foundBooking, err := load(f.storage, BookingKey(merchantTransactionID), &booking)
	switch {
	case errors.Is(err, errCorruptPending):
		log.Warn("Discarding corrupt pending booking", "error", err)
		f.remove(ctx, BookingKey(merchantTransactionID))
	case err != nil:
		return nil, nil, fmt.Errorf("failed to read pending booking: %w", err)
	}

	var donation PendingDonation
	foundDonation, err := load(f.storage, DonationKey(merchantTransactionID), &donation)
	switch {
	case errors.Is(err, errCorruptPending):
		log.Warn("Discarding corrupt pending donation", "error", err)
		f.remove(ctx, DonationKey(merchantTransactionID))
	case err != nil:
		return nil, nil, fmt.Errorf("failed to read pending donation: %w", err)
	}

	var b *PendingBooking
	var d *PendingDonation
	if foundBooking {
		b = &booking
	}
	if foundDonation {
		d = &donation
	}
	return b, d, nil
}

func (f *Finalizer) notify(ctx context.Context, booking *models.Booking) error {
	if f.notifier == nil {
		return errors.New("no notifier configured")
	}
	return f.notifier.SendBookingConfirmation(ctx, booking)
}

func (f *Finalizer) clear(ctx context.Context, merchantTransactionID string) {
	f.remove(ctx, BookingKey(merchantTransactionID))
	f.remove(ctx, DonationKey(merchantTransactionID))
}

func (f *Finalizer) remove(ctx context.Context, key string) {
	if err := f.storage.RemoveItem(key); err != nil {
		logger.WithContext(ctx).Error("Failed to remove pending purchase", "key", key, "error", err)
	}
}

func (f *Finalizer) publish(ctx context.Context, subject string, event any) {
	if f.publisher == nil {
		return
	}
	if err := f.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Warn("Failed to publish event", "subject", subject, "error", err)
	}
}

func interrupted(log *slog.Logger, err error) *Result {
	log.Warn("Finalization interrupted", "error", err)
	return &Result{Outcome: OutcomeFailed, Message: msgInterrupted}
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if upstream := apiErr.UpstreamMessage(); upstream != "" {
			return upstream
		}
		return apiErr.Message
	}
	return err.Error()
}

func supportReference(transactionID, merchantTransactionID string) string {
	if transactionID != "" {
		return transactionID
	}
	return merchantTransactionID
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
