// Package metrics defines and registers all custom Prometheus metrics for the
// packaging backoffice. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Remote data service ───────────────────────────────────────────────────────

// RemoteRequestsTotal counts calls made to the remote data service.
// Labels:
//   - method: HTTP method
//   - status: response status code, or "network_error"
var RemoteRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Total number of requests sent to the remote data service.",
	},
	[]string{"method", "status"},
)

// RemoteRequestDuration measures a single round trip to the remote data service.
var RemoteRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of remote data service round trips.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// TokenRefreshTotal counts refresh attempts.
// Label:
//   - result: "ok", "expired", "rejected" or "network_error"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Inventory ledger ──────────────────────────────────────────────────────────

// OrdersCreatedTotal counts orders created by the ledger.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// StockMovementsTotal counts stock writes performed by the ledger.
// Label:
//   - reason: "order_create", "order_delete", "order_cancel", "item_delete" or "adjust"
var StockMovementsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_movements_total",
		Help:      "Total number of product stock writes, by reason.",
	},
	[]string{"reason"},
)

// LedgerPartialFailuresTotal counts multi-step operations that failed after at
// least one write had been applied.
var LedgerPartialFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_partial_failures_total",
		Help:      "Total number of ledger operations that failed part way through.",
	},
	[]string{"operation"},
)

// OrderIdempotencyTotal counts idempotency key lookups.
// Label:
//   - result: "hit" (replay, no effect) or "miss"
var OrderIdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_idempotency_total",
		Help:      "Total number of order idempotency checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Activity recording ────────────────────────────────────────────────────────

// ActivityRecordedTotal counts records written to a sink.
// Labels:
//   - sink: "remote" or "mongo"
//   - result: "ok" or "error"
var ActivityRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_recorded_total",
		Help:      "Total number of activity records written, by sink and result.",
	},
	[]string{"sink", "result"},
)

// ActivityDroppedTotal counts records discarded because the queue was full.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity records dropped on a full queue.",
	},
)

// ActivityQueueDepth tracks the records waiting in each dispatcher worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
