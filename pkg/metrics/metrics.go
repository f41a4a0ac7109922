package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Policy decisions by entity, operation and outcome (allow, deny, error)
	PolicyDecisions *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Token store metrics
	TokenStoreOperations *prometheus.CounterVec

	// Authentication attempts by outcome
	LoginAttempts *prometheus.CounterVec
}

// NewMetrics creates the application metrics and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PolicyDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_decisions_total",
			Help:      "Total number of policy decisions",
		}, []string{"entity", "operation", "outcome"}),

		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		TokenStoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_store_operations_total",
			Help:      "Total number of token store operations",
		}, []string{"operation", "status"}),

		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts",
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PolicyDecisions,
			m.DatabaseOperations,
			m.DatabaseLatency,
			m.TokenStoreOperations,
			m.LoginAttempts,
		)
	}
	return m
}
