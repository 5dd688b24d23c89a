package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry: relationship mutation
// outcomes, record counts and login attempts.
type Metrics struct {
	RelationshipOps      *prometheus.CounterVec
	RelationshipDuration *prometheus.HistogramVec
	FamiliesCollected    prometheus.Counter
	PersonsCreated       prometheus.Counter
	LoginAttempts        *prometheus.CounterVec
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		RelationshipOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "parishbook_relationship_ops_total",
			Help: "Relationship mutations by operation and outcome",
		}, []string{"operation", "outcome"}),
		RelationshipDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parishbook_relationship_op_duration_seconds",
			Help:    "Duration of relationship mutations, transaction included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		FamiliesCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "parishbook_families_collected_total",
			Help: "Families deleted for falling below the minimum member count",
		}),
		PersonsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "parishbook_persons_created_total",
			Help: "Total number of persons registered",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "parishbook_login_attempts_total",
			Help: "Admin login attempts by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveRelationshipOp records one relationship mutation.
func (m *Metrics) ObserveRelationshipOp(operation, outcome string, elapsed time.Duration) {
	m.RelationshipOps.WithLabelValues(operation, outcome).Inc()
	m.RelationshipDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// IncrementFamiliesCollected records a family removed by the size rule.
func (m *Metrics) IncrementFamiliesCollected() {
	m.FamiliesCollected.Inc()
}

// IncrementPersonsCreated records a successful person registration.
func (m *Metrics) IncrementPersonsCreated() {
	m.PersonsCreated.Inc()
}

// IncrementLogin records a login attempt outcome (ok, denied, locked).
func (m *Metrics) IncrementLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}
