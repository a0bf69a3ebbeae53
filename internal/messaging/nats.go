package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

// Publisher publishes domain events. Callers treat failures as best-effort.
type Publisher interface {
	Publish(subject string, data any) error
}

type NATSClient struct {
	conn stan.Conn
}

type Config struct {
	Enabled   bool
	URL       string
	ClusterID string
	ClientID  string
}

// SubscribeOptions tune a durable queue subscription
type SubscribeOptions struct {
	AckWait     time.Duration
	MaxInflight int
}

// NewNATSClient connects to NATS Streaming. A disabled config yields a client
// whose Publish is a no-op, so the API and checkout run without a broker.
func NewNATSClient(cfg Config) (*NATSClient, error) {
	if !cfg.Enabled {
		slog.Info("NATS disabled, domain events will not be published")
		return &NATSClient{}, nil
	}

	// client ids must be unique per connection within a cluster
	uniqueClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, uniqueClientID,
		stan.NatsURL(cfg.URL),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			slog.Error("NATS Streaming connection lost", "error", reason)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", uniqueClientID)

	return &NATSClient{conn: conn}, nil
}

// ConnectOptional connects like NewNATSClient but degrades to the disabled
// client when the broker is unreachable. For processes that only publish.
func ConnectOptional(cfg Config) *NATSClient {
	client, err := NewNATSClient(cfg)
	if err != nil {
		slog.Warn("NATS unavailable, domain events will not be published", "url", cfg.URL, "error", err)
		return &NATSClient{}
	}
	return client
}

// Enabled reports whether the client holds a live connection
func (nc *NATSClient) Enabled() bool {
	return nc != nil && nc.conn != nil
}

func (nc *NATSClient) Publish(subject string, data any) error {
	if !nc.Enabled() {
		slog.Debug("NATS disabled, dropping message", "subject", subject)
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published message", "subject", subject)
	return nil
}

// SubscribeQueue creates a durable queue subscription in manual ack mode.
// Messages the handler does not ack are redelivered after AckWait.
func (nc *NATSClient) SubscribeQueue(subject, queue string, handler stan.MsgHandler, opts SubscribeOptions) (stan.Subscription, error) {
	if !nc.Enabled() {
		return nil, fmt.Errorf("cannot subscribe to %s: NATS is disabled", subject)
	}
	if opts.AckWait <= 0 {
		opts.AckWait = 30 * time.Second
	}
	if opts.MaxInflight <= 0 {
		opts.MaxInflight = 1
	}

	sub, err := nc.conn.QueueSubscribe(subject, queue, handler,
		stan.DurableName(subject+"-"+queue+"-durable"),
		stan.SetManualAckMode(),
		stan.AckWait(opts.AckWait),
		stan.MaxInflight(opts.MaxInflight))
	if err != nil {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}

	slog.Info("Subscribed to subject", "subject", subject, "queue", queue)
	return sub, nil
}

func (nc *NATSClient) Close() error {
	if nc.Enabled() {
		return nc.conn.Close()
	}
	return nil
}
