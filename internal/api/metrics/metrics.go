// Package metrics defines and registers all custom Prometheus metrics for
// the InvoiceFlow console gateway. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the gateway exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Backend call metrics ──────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the remote InvoiceFlow API.
// Labels:
//   - op: the logical operation (e.g. "invoices.list", "auth.me")
//   - outcome: "ok", "api_error", or "transport_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of calls issued to the remote API, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// BackendRequestDuration measures remote call latency end-to-end.
// Label:
//   - op: the logical operation
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of remote API calls from dispatch to decoded response.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"op"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// CredentialResolutionsTotal counts credential-resolution attempts.
// Label:
//   - result: "stored", "pasted", "login", "registered", "challenge", "denied"
var CredentialResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_resolutions_total",
		Help:      "Total number of role-token resolutions, by how the token was obtained.",
	},
	[]string{"result"},
)

// SessionsClearedTotal counts full session teardowns.
// Label:
//   - reason: "logout" or "unauthorized"
var SessionsClearedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_cleared_total",
		Help:      "Total number of sessions cleared, by reason.",
	},
	[]string{"reason"},
)

// ── Mutation metrics ──────────────────────────────────────────────────────────

// SubmissionDedupTotal counts duplicate-submission checks.
// Label:
//   - result: "hit" (duplicate, rejected) or "miss" (first submission)
var SubmissionDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_dedup_total",
		Help:      "Total number of duplicate-submission checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
