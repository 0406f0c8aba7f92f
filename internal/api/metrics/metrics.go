// Package metrics defines and registers all custom Prometheus metrics for the
// client gateway. It is the single source of truth for metric names, labels,
// and help strings; metrics register with the default registry at package
// init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts credential exchanges by path and outcome.
// Labels:
//   - path: "login", "client_login", "magic_link", "signup"
//   - outcome: "success", "invalid_credentials", "token_expired",
//     "network_unavailable", "superseded", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of credential exchanges, by path and outcome.",
	},
	[]string{"path", "outcome"},
)

// GuardDecisionsTotal counts guard outcomes.
// Labels:
//   - guard: "admin", "client", "guest"
//   - decision: "render", "redirect", "pending"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by guard and decision.",
	},
	[]string{"guard", "decision"},
)

// LegacyRedirectsTotal counts legacy-path resolutions.
// Label:
//   - rule: "portal" or "client_login"
var LegacyRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "legacy_redirects_total",
		Help:      "Total number of legacy URL redirects issued, by rule.",
	},
	[]string{"rule"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequests counts calls to the platform API.
// Labels:
//   - op: stable operation name ("auth_login", "wallet_history", ...), never
//     the raw request path, which carries ids and query strings
//   - result: HTTP status code or "network_error"
var UpstreamRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of platform API requests, by operation and result.",
	},
	[]string{"op", "result"},
)

// UpstreamDuration measures platform API round-trip time.
var UpstreamDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of platform API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ── Analytics metrics ─────────────────────────────────────────────────────────

// AnalyticsEventsTotal counts page-view events by pipeline outcome.
// Label:
//   - result: "recorded", "dropped", "failed"
var AnalyticsEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_events_total",
		Help:      "Total number of analytics page-view events, by result.",
	},
	[]string{"result"},
)
