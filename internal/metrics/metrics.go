package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics counts booking outcomes and slot generation work.
type SchedulingMetrics struct {
	bookingsTotal     *prometheus.CounterVec
	bookingCommit     prometheus.Histogram
	slotsGenerated    prometheus.Counter
	generationErrors  *prometheus.CounterVec
	reconcileFailures prometheus.Counter
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking operations by outcome",
		}, []string{"operation", "outcome"}),
		bookingCommit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Name:      "booking_commit_seconds",
			Help:      "Latency of the atomic booking insert",
			Buckets:   prometheus.DefBuckets,
		}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "slots_generated_total",
			Help:      "Slots inserted by generation runs",
		}),
		generationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "generation_errors_total",
			Help:      "Per-day or per-provider generation failures",
		}, []string{"kind"}),
		reconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "slot_reconcile_failures_total",
			Help:      "Slot projections left behind after a committed booking change",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.bookingCommit, m.slotsGenerated, m.generationErrors, m.reconcileFailures)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(operation, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveCommit(seconds float64) {
	if m == nil {
		return
	}
	m.bookingCommit.Observe(seconds)
}

func (m *SchedulingMetrics) AddGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsGenerated.Add(float64(n))
}

func (m *SchedulingMetrics) ObserveGenerationError(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.generationErrors.WithLabelValues(kind).Inc()
}

func (m *SchedulingMetrics) ObserveReconcileFailure() {
	if m == nil {
		return
	}
	m.reconcileFailures.Inc()
}
