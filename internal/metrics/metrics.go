// Package metrics exposes Prometheus counters for catalog runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "highlights"
	Subsystem = "catalog"
)

// Metrics holds the catalog run metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDurationSeconds prometheus.Histogram
	LastSuccess        prometheus.Gauge

	VideosFetched  *prometheus.CounterVec
	VideosDropped  *prometheus.CounterVec
	VideosNew      prometheus.Counter
	CatalogSize    prometheus.Gauge
	SourceErrors   *prometheus.CounterVec
	WebhookUploads *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics on reg, or on the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "runs_total",
			Help:      "Catalog runs by outcome",
		}, []string{"status"}),
		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of a catalog run in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		VideosFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "videos_fetched_total",
			Help:      "Raw videos returned by each source",
		}, []string{"source"}),
		VideosDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "videos_dropped_total",
			Help:      "Videos left out of the catalog, by reason",
		}, []string{"reason"}),
		VideosNew: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "videos_new_total",
			Help:      "Videos added to the catalog",
		}),
		CatalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "videos",
			Help:      "Videos in the catalog after the last write",
		}),
		SourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "source_errors_total",
			Help:      "Failed source fetches",
		}, []string{"source"}),
		WebhookUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "webhook_uploads_total",
			Help:      "Upload notifications received, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveRun(success bool, d time.Duration, at time.Time) {
	if m == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
		m.LastSuccess.Set(float64(at.Unix()))
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) Fetched(source string, n int) {
	if m == nil {
		return
	}
	m.VideosFetched.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) Dropped(reason string) {
	if m == nil {
		return
	}
	m.VideosDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SourceFailed(source string) {
	if m == nil {
		return
	}
	m.SourceErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) Stored(added, total int) {
	if m == nil {
		return
	}
	m.VideosNew.Add(float64(added))
	m.CatalogSize.Set(float64(total))
}

func (m *Metrics) Webhook(outcome string) {
	if m == nil {
		return
	}
	m.WebhookUploads.WithLabelValues(outcome).Inc()
}
