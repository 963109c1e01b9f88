// Package observability exposes Prometheus metrics for the coupon economy.
// The /metrics endpoint is wired in the API server via promhttp.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Economy Metrics ────────────────────────────────────────────────────────

// AccountsCreated tracks total accounts created.
var AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dealgrove",
	Subsystem: "economy",
	Name:      "accounts_created_total",
	Help:      "Total accounts created.",
})

// CouponsPublished tracks total coupons published (committed only).
var CouponsPublished = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dealgrove",
	Subsystem: "economy",
	Name:      "coupons_published_total",
	Help:      "Total coupons published and committed.",
})

// VotesCast tracks committed votes by direction.
var VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dealgrove",
	Subsystem: "economy",
	Name:      "votes_cast_total",
	Help:      "Total votes journaled and committed, by direction.",
}, []string{"direction"})

// OperationsRejected tracks business-rule refusals by operation.
var OperationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dealgrove",
	Subsystem: "economy",
	Name:      "operations_rejected_total",
	Help:      "Total operations refused for insufficient reputation, by operation.",
}, []string{"operation"})

// TransactionsAborted tracks store-level transaction failures by operation.
var TransactionsAborted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dealgrove",
	Subsystem: "economy",
	Name:      "transactions_aborted_total",
	Help:      "Total transactions rolled back on store failure, by operation.",
}, []string{"operation"})

// ReputationSpent tracks total reputation debited across committed operations.
var ReputationSpent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dealgrove",
	Subsystem: "economy",
	Name:      "reputation_spent_total",
	Help:      "Total reputation debited by committed operations.",
})
