// Package metrics wires the counters and histograms spec §4.3/§4.8 call
// out by name (outbox dead-letters, rate-limit rejections, cross-tenant
// denials, request duration), grounded on
// aryan0dhankhar-containerlease's internal/observability/metrics package
// (promauto-registered collectors behind plain exported functions, no
// metrics struct to thread through every layer).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/taskforge/core-api/internal/platform/authz"
	"github.com/taskforge/core-api/internal/platform/events"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskforge_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskforge_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	outboxDeadLetters = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskforge_outbox_dead_letters_total",
		Help: "Count of outbox rows that exhausted their retry budget and were dead-lettered, by event type.",
	}, []string{"event_type"})

	rateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskforge_rate_limit_rejections_total",
		Help: "Count of requests rejected by the RateLimit middleware, by route.",
	}, []string{"route"})

	crossTenantDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskforge_cross_tenant_denials_total",
		Help: "Count of requests denied for resolving to a different tenant than the caller's token, by reason.",
	}, []string{"reason"})
)

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveRateLimitRejection increments the rate-limit rejection counter
// for route.
func ObserveRateLimitRejection(route string) {
	rateLimitRejections.WithLabelValues(route).Inc()
}

// ObserveCrossTenantDenial increments the cross-tenant denial counter
// for the given mismatch reason (e.g. "header_claim_mismatch",
// "tenant_inactive").
func ObserveCrossTenantDenial(reason string) {
	crossTenantDenials.WithLabelValues(reason).Inc()
}

// DeadLetterObserver adapts the counter above to
// events.DeadLetterObserver so internal/platform/events never imports
// Prometheus directly.
type DeadLetterObserver struct{}

var _ events.DeadLetterObserver = DeadLetterObserver{}

func (DeadLetterObserver) ObserveDeadLetter(eventType string) {
	outboxDeadLetters.WithLabelValues(eventType).Inc()
}

// CrossTenantObserver adapts the counter above to
// authz.CrossTenantObserver so internal/platform/authz and
// internal/application never import Prometheus directly.
type CrossTenantObserver struct{}

var _ authz.CrossTenantObserver = CrossTenantObserver{}

func (CrossTenantObserver) ObserveCrossTenantDenial(reason string) {
	ObserveCrossTenantDenial(reason)
}
