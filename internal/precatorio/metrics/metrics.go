package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus counters for the precatório aggregate family.
type Metrics struct {
	RecordsCreated *prometheus.CounterVec
	RecordsDeleted *prometheus.CounterVec
	DeletesBlocked *prometheus.CounterVec
}

// New creates and registers precatório metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RecordsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "precato_records_created_total",
			Help: "Total records created, by entity",
		}, []string{"entity"}),
		RecordsDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "precato_records_deleted_total",
			Help: "Total records deleted, by entity",
		}, []string{"entity"}),
		DeletesBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "precato_deletes_blocked_total",
			Help: "Deletions rejected because dependent records still exist",
		}, []string{"entity", "dependents"}),
	}
}

func (m *Metrics) IncrementCreated(entity string) {
	if m != nil {
		m.RecordsCreated.WithLabelValues(entity).Inc()
	}
}

func (m *Metrics) IncrementDeleted(entity string) {
	if m != nil {
		m.RecordsDeleted.WithLabelValues(entity).Inc()
	}
}

func (m *Metrics) IncrementDeleteBlocked(entity, dependents string) {
	if m != nil {
		m.DeletesBlocked.WithLabelValues(entity, dependents).Inc()
	}
}
