package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outbox publisher batches.
type PublisherMetrics struct {
	duration  prometheus.Histogram
	published prometheus.Counter
	failed    *prometheus.CounterVec
}

func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events delivered to the broker.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox events that failed to publish.",
	}, []string{"terminal"})
	reg.MustRegister(duration, published, failed)
	return &PublisherMetrics{
		duration:  duration,
		published: published,
		failed:    failed,
	}
}

func (p *PublisherMetrics) ObserveBatch(elapsed time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.Observe(elapsed.Seconds())
}

func (p *PublisherMetrics) IncPublished() {
	if p == nil || p.published == nil {
		return
	}
	p.published.Inc()
}

func (p *PublisherMetrics) IncFailed(terminal bool) {
	if p == nil || p.failed == nil {
		return
	}
	label := "false"
	if terminal {
		label = "true"
	}
	p.failed.WithLabelValues(label).Inc()
}
