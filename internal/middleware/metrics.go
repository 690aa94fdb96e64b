package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mystery_message_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// UpstreamErrors counts failed calls to external collaborators
	// (email sender, suggestion generator, air-quality APIs).
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mystery_message_upstream_errors_total",
		Help: "Total number of upstream API failures by service",
	}, []string{"service"})

	// UpstreamLatency records round-trip latency of external API calls.
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mystery_message_upstream_latency_seconds",
		Help:    "External API call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	// VerificationEmails counts verification email dispatch outcomes.
	VerificationEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mystery_message_verification_emails_total",
		Help: "Total number of verification email dispatch attempts by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler for request metrics collection.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
