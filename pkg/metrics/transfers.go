package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"

	DirectionOut      = "out"
	DirectionReversal = "reversal"
)

// TransferMetrics records transfer engine operations.
type TransferMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	units      *prometheus.CounterVec
}

// NewTransferMetrics registers the transfer metrics on the provided registerer.
// A nil registerer yields a recorder that drops every observation.
func NewTransferMetrics(reg prometheus.Registerer) *TransferMetrics {
	if reg == nil {
		return &TransferMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_operations_total",
		Help: "Transfer operations by outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transfer_operation_duration_seconds",
		Help:    "Duration of transfer operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_units_moved_total",
		Help: "Stock units moved between locations.",
	}, []string{"direction"})
	reg.MustRegister(operations, duration, units)
	return &TransferMetrics{
		operations: operations,
		duration:   duration,
		units:      units,
	}
}

// Observe records the outcome and latency of one operation.
func (m *TransferMetrics) Observe(operation string, err error, elapsed time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	op := normalizeLabel(operation)
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// AddUnits counts stock units moved in the given direction.
func (m *TransferMetrics) AddUnits(direction string, units int) {
	if m == nil || m.units == nil || units <= 0 {
		return
	}
	m.units.WithLabelValues(normalizeLabel(direction)).Add(float64(units))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
