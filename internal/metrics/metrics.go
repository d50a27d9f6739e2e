package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	amounts    *prometheus.CounterVec
}

// New builds a self-contained registry so tests can create throwaway
// instances without duplicate-registration panics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by type and outcome.",
		}, []string{"operation", "outcome"}),
		amounts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_amount_total",
			Help: "Sum of amounts moved, by operation and currency.",
		}, []string{"operation", "currency"}),
	}
}

func (m *Metrics) RecordOperation(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordAmount(operation, currency string, amount float64) {
	m.amounts.WithLabelValues(operation, currency).Add(amount)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
