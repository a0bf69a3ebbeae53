package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boxoffice_gateway_requests_total",
		Help: "Payment gateway calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	GatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boxoffice_gateway_request_duration_seconds",
		Help:    "Payment gateway call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boxoffice_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boxoffice_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boxoffice_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})

	PaymentStatusChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boxoffice_payment_status_checks_total",
		Help: "Relayed payment status checks by reported transaction state.",
	}, []string{"state"})

	NotificationRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boxoffice_notification_retries_total",
		Help: "Confirmation email retries by result.",
	}, []string{"result"})

	ConsumedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boxoffice_consumed_messages_total",
		Help: "NATS messages handled by subject.",
	}, []string{"subject"})
)

// ObserveGateway records one gateway call
func ObserveGateway(operation, outcome string, started time.Time) {
	GatewayRequests.WithLabelValues(operation, outcome).Inc()
	GatewayLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
