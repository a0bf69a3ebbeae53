package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"boxoffice/internal/config"
	"boxoffice/internal/external"
	"boxoffice/internal/messaging"
	"boxoffice/internal/models"

	"github.com/nats-io/stan.go"
)

type ConsumerService struct {
	nats          *messaging.NATSClient
	handlers      *Handlers
	queue         string
	opts          messaging.SubscribeOptions
	subscriptions []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	if !cfg.NATS.Enabled {
		return nil, errors.New("consumers require NATS_ENABLED=true")
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	notifier := external.NewNotificationClient(cfg.Notifier)

	return &ConsumerService{
		nats:     natsClient,
		handlers: NewHandlers(notifier, cfg.Consumers.NotifyMaxRedeliveries),
		queue:    cfg.Consumers.QueueGroup,
		opts: messaging.SubscribeOptions{
			AckWait:     cfg.Consumers.AckWait,
			MaxInflight: cfg.Consumers.MaxInflight,
		},
	}, nil
}

// routes maps each subject to its handler
func (cs *ConsumerService) routes() map[string]stan.MsgHandler {
	return map[string]stan.MsgHandler{
		models.EventNotificationFailed:   cs.handlers.HandleNotificationFailed,
		models.EventPaymentInitiated:     cs.handlers.HandlePaymentInitiated,
		models.EventPaymentStatusChecked: cs.handlers.HandlePaymentStatusChecked,
		models.EventPaymentFailed:        cs.handlers.HandlePaymentFailed,
		models.EventBookingConfirmed:     cs.handlers.HandleBookingConfirmed,
		models.EventBookingPersistFailed: cs.handlers.HandleBookingPersistFailed,
		models.EventDonationRecorded:     cs.handlers.HandleDonationRecorded,
	}
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...", "queue", cs.queue)

	for subject, handler := range cs.routes() {
		sub, err := cs.nats.SubscribeQueue(subject, cs.queue, handler, cs.opts)
		if err != nil {
			return fmt.Errorf("failed to start consumer for %s: %w", subject, err)
		}
		cs.subscriptions = append(cs.subscriptions, sub)
	}

	slog.Info("All consumers started successfully", "subscriptions", len(cs.subscriptions))
	return nil
}

// Shutdown closes subscriptions without removing their durable state
func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	for _, sub := range cs.subscriptions {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}
	cs.subscriptions = nil

	done := make(chan error, 1)
	go func() { done <- cs.nats.Close() }()

	select {
	case err := <-done:
		if err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
