package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus counters for phase lifecycle operations.
type Metrics struct {
	PhasesCreated  prometheus.Counter
	PhasesDeleted  prometheus.Counter
	DeletesBlocked *prometheus.CounterVec
}

// New creates and registers phase metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		PhasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "precato_phases_created_total",
			Help: "Total number of phases created (main and fee phases)",
		}),
		PhasesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "precato_phases_deleted_total",
			Help: "Total number of phases deleted",
		}),
		DeletesBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "precato_phase_deletes_blocked_total",
			Help: "Phase deletions rejected because dependent records still reference the phase",
		}, []string{"dependents"}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.PhasesCreated.Inc()
	}
}

func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.PhasesDeleted.Inc()
	}
}

func (m *Metrics) IncrementDeleteBlocked(dependents string) {
	if m != nil {
		m.DeletesBlocked.WithLabelValues(dependents).Inc()
	}
}
