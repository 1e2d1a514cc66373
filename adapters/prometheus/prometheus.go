// Package prometheus provides a Prometheus implementation of the
// typemap metrics interface.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hukumka/generic-static/core/metrics"
	"github.com/hukumka/generic-static/core/typemap"
)

// timer wraps a Prometheus histogram to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for producer latency (in seconds).
var defaultBuckets = []float64{
	.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

// typemapMetrics implements typemap.Metrics using Prometheus.
type typemapMetrics struct {
	hits         *prometheus.CounterVec
	misses       *prometheus.CounterVec
	initDuration *prometheus.HistogramVec
	initFailures *prometheus.CounterVec
	entries      *prometheus.GaugeVec
}

// NewTypemapMetrics creates a Prometheus implementation of
// typemap.Metrics. One instance may be shared by any number of maps;
// series are labelled by map name and keyed type.
func NewTypemapMetrics(reg prometheus.Registerer) typemap.Metrics {
	m := &typemapMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "typemap_hits_total",
			Help: "Total number of lookups that found an initialized entry",
		}, []string{"map", "type"}),

		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "typemap_misses_total",
			Help: "Total number of lookups that triggered initialization",
		}, []string{"map", "type"}),

		initDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "typemap_init_duration_seconds",
			Help:    "Producer execution time in seconds",
			Buckets: defaultBuckets,
		}, []string{"map", "type"}),

		initFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "typemap_init_failures_total",
			Help: "Total number of producers that returned an error",
		}, []string{"map", "type"}),

		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "typemap_entries",
			Help: "Number of initialized entries per map",
		}, []string{"map"}),
	}

	reg.MustRegister(
		m.hits,
		m.misses,
		m.initDuration,
		m.initFailures,
		m.entries,
	)

	return m
}

func (m *typemapMetrics) Hit(mapName, typeName string) {
	m.hits.WithLabelValues(mapName, typeName).Inc()
}

func (m *typemapMetrics) Miss(mapName, typeName string) {
	m.misses.WithLabelValues(mapName, typeName).Inc()
}

func (m *typemapMetrics) InitDuration(mapName, typeName string) metrics.Timer {
	return newTimer(m.initDuration.WithLabelValues(mapName, typeName))
}

func (m *typemapMetrics) InitFailed(mapName, typeName string) {
	m.initFailures.WithLabelValues(mapName, typeName).Inc()
}

func (m *typemapMetrics) Entries(mapName string, count int) {
	m.entries.WithLabelValues(mapName).Set(float64(count))
}

var _ typemap.Metrics = (*typemapMetrics)(nil)
