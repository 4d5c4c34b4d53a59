// Package metrics exposes Prometheus counters for the session lifecycle and
// video publishing.
//
// Outcomes are recorded as error kinds ("success", "invalid_credentials",
// "token_reused", ...), so alerting can separate user mistakes from replay
// attempts and store failures.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const OutcomeSuccess = "success"

var (
	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// RefreshAttempts counts refresh token rotations by outcome.
	RefreshAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_refresh_attempts_total",
			Help: "Total number of refresh token rotations",
		},
		[]string{"outcome"},
	)

	// LogoutTotal counts logouts by outcome.
	LogoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_logout_total",
			Help: "Total number of logouts",
		},
		[]string{"outcome"},
	)

	// GateRejections counts requests refused by the authentication gate.
	GateRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_gate_rejections_total",
			Help: "Total number of requests rejected by the authentication gate",
		},
		[]string{"reason"},
	)

	// VideoPublishes counts video publish attempts by outcome.
	VideoPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_video_publishes_total",
			Help: "Total number of video publish attempts",
		},
		[]string{"outcome"},
	)

	// HTTPRequestDuration tracks request latency by route pattern and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func RecordLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

func RecordRefresh(outcome string) {
	RefreshAttempts.WithLabelValues(outcome).Inc()
}

func RecordLogout(outcome string) {
	LogoutTotal.WithLabelValues(outcome).Inc()
}

func RecordGateRejection(reason string) {
	GateRejections.WithLabelValues(reason).Inc()
}

func RecordVideoPublish(outcome string) {
	VideoPublishes.WithLabelValues(outcome).Inc()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, statusClass(status)).Observe(duration.Seconds())
}

// statusClass collapses a status code to "2xx", "4xx", ... to bound label cardinality.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
