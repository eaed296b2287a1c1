// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// CompletionDuration tracks completion-provider call duration.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_duration_seconds",
			Help:    "Completion provider call duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"provider", "status"},
	)

	// CompletionTokensTotal tracks total completion tokens processed.
	CompletionTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_tokens_total",
			Help: "Total completion tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// ChatExchangesTotal tracks completed chat exchanges.
	ChatExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_exchanges_total",
			Help: "Total completed chat exchanges",
		},
		[]string{"tier"},
	)

	// QuotaRejectionsTotal tracks chat requests rejected at the quota cap.
	QuotaRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quota_rejections_total",
			Help: "Chat requests rejected because the free-tier cap was reached",
		},
	)

	// UsersRegisteredTotal tracks account registrations.
	UsersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total registered accounts",
		},
	)

	// WSConnectionsActive tracks active websocket connections.
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Number of active websocket connections",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records metrics for a completion-provider call.
func RecordCompletion(provider, status string, duration float64, tokensIn, tokensOut int) {
	CompletionDuration.WithLabelValues(provider, status).Observe(duration)
	CompletionTokensTotal.WithLabelValues(provider, "in").Add(float64(tokensIn))
	CompletionTokensTotal.WithLabelValues(provider, "out").Add(float64(tokensOut))
}

// RecordExchange records a completed chat exchange for the given tier.
func RecordExchange(premium bool) {
	tier := "free"
	if premium {
		tier = "premium"
	}
	ChatExchangesTotal.WithLabelValues(tier).Inc()
}

// IncrementWSConnections increments the active websocket connection count.
func IncrementWSConnections() {
	WSConnectionsActive.Inc()
}

// DecrementWSConnections decrements the active websocket connection count.
func DecrementWSConnections() {
	WSConnectionsActive.Dec()
}
