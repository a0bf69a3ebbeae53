package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/external"
	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"

	"github.com/google/uuid"
)

// Gateway is the signed relay to the payment provider
type Gateway interface {
	Pay(ctx context.Context, req external.PayRequest) (json.RawMessage, error)
	Status(ctx context.Context, merchantTransactionID string) (json.RawMessage, error)
}

type PaymentService struct {
	gateway     Gateway
	publisher   messaging.Publisher
	clientURL   string
	callbackURL string
	newID       func() string
}

func NewPaymentService(gateway Gateway, clientURL, callbackURL string) *PaymentService {
	return &PaymentService{
		gateway:     gateway,
		clientURL:   strings.TrimRight(clientURL, "/"),
		callbackURL: callbackURL,
		newID:       NewMerchantID,
	}
}

// NewMerchantID returns a fresh MUID-prefixed identifier
func NewMerchantID() string {
	return "MUID-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ToMinorUnits converts a major-unit amount to paise
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ValidAmount reports whether amount can be charged. Missing, zero, negative
// and non-finite amounts are all rejected.
func ValidAmount(amount *float64) bool {
	if amount == nil {
		return false
	}
	a := *amount
	return !math.IsNaN(a) && !math.IsInf(a, 0) && a > 0
}

// Initiate starts a payment for amount and returns the gateway's raw response.
// Invalid amounts fail with ErrAmountRequired before the gateway is contacted.
func (s *PaymentService) Initiate(ctx context.Context, amount *float64) (json.RawMessage, error) {
	if !ValidAmount(amount) {
		return nil, apperrors.ErrAmountRequired
	}

	merchantTransactionID := s.newID()
	req := external.PayRequest{
		MerchantTransactionID: merchantTransactionID,
		MerchantUserID:        s.newID(),
		Amount:                ToMinorUnits(*amount),
		RedirectURL:           fmt.Sprintf("%s/payment-status/%s", s.clientURL, merchantTransactionID),
		RedirectMode:          external.RedirectModeRedirect,
		CallbackURL:           s.callbackURL,
		PaymentInstrument:     external.PaymentInstrument{Type: external.InstrumentPayPage},
	}

	log := logger.WithContext(logger.ContextWithTransactionID(ctx, merchantTransactionID))

	started := time.Now()
	resp, err := s.gateway.Pay(ctx, req)
	if err != nil {
		metrics.ObserveGateway("pay", "error", started)
		log.Error("Failed to initiate payment", "error", err, "amount_minor", req.Amount)
		return nil, err
	}
	metrics.ObserveGateway("pay", "ok", started)

	log.Info("Payment initiated", "amount_minor", req.Amount)
	s.publish(ctx, models.EventPaymentInitiated, models.PaymentInitiatedEvent{
		MerchantTransactionID: merchantTransactionID,
		AmountMinor:           req.Amount,
		Timestamp:             time.Now(),
	})
	return resp, nil
}

// CheckStatus relays a status check for merchantTransactionID
func (s *PaymentService) CheckStatus(ctx context.Context, merchantTransactionID string) (json.RawMessage, error) {
	if strings.TrimSpace(merchantTransactionID) == "" {
		return nil, apperrors.ErrTransactionIDRequired
	}

	log := logger.WithContext(logger.ContextWithTransactionID(ctx, merchantTransactionID))

	started := time.Now()
	resp, err := s.gateway.Status(ctx, merchantTransactionID)
	if err != nil {
		metrics.ObserveGateway("status", "error", started)
		log.Error("Failed to check payment status", "error", err)
		return nil, err
	}
	metrics.ObserveGateway("status", "ok", started)

	// the raw body is relayed as is; an undecodable one is only left unpublished
	var status models.GatewayResponse
	if err := json.Unmarshal(resp, &status); err == nil {
		s.publish(ctx, models.EventPaymentStatusChecked, models.PaymentStatusCheckedEvent{
			MerchantTransactionID: merchantTransactionID,
			Code:                  status.Code,
			State:                 status.State(),
			Timestamp:             time.Now(),
		})
	}

	return resp, nil
}

// publish sends a domain event without affecting the relayed response
func (s *PaymentService) publish(ctx context.Context, subject string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Warn("Failed to publish event", "subject", subject, "error", err)
	}
}
