package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	at := time.Unix(1730628000, 0)
	m.ObserveRun(true, 2*time.Second, at)
	m.ObserveRun(false, time.Second, at)
	m.Fetched("IPL", 3)
	m.Fetched("IPL", 2)
	m.Dropped("short")
	m.SourceFailed("BCCI")
	m.Stored(4, 120)
	m.Webhook("ingested")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.LastSuccess))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.VideosFetched.WithLabelValues("IPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VideosDropped.WithLabelValues("short")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceErrors.WithLabelValues("BCCI")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.VideosNew))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.CatalogSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhookUploads.WithLabelValues("ingested")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun(true, time.Second, time.Now())
		m.Fetched("x", 1)
		m.Dropped("x")
		m.SourceFailed("x")
		m.Stored(1, 1)
		m.Webhook("x")
	})
}
