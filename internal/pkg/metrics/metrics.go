// Package metrics defines and registers all custom Prometheus metrics for the
// Caja API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "caja"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AccountsProvisionedTotal counts system-account upserts.
// Label:
//   - name: the system account name ("CAJA", "INGRESOS HONORARIOS")
var AccountsProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_provisioned_total",
		Help:      "Total number of system account upserts.",
	},
	[]string{"name"},
)

// ── Entity metrics ────────────────────────────────────────────────────────────

// EntityMutationsTotal counts successful writes on business entities.
// Labels:
//   - entity: "client", "account" or "user"
//   - op: "create", "update", "delete" or "deactivate"
var EntityMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entity_mutations_total",
		Help:      "Total number of successful entity writes, by entity and operation.",
	},
	[]string{"entity", "op"},
)
