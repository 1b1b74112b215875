// Package metrics instruments the simulation core with Prometheus
// collectors: a tick counter per patch, a synchronization-latency
// histogram, and an active-patch gauge, all registered against a private
// registry so a dashboard instance never collides with another process's
// default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ivanpozdin/patchsim/atomicfloat"
)

// Metrics holds every collector the simulation core reports to.
type Metrics struct {
	registry       *prometheus.Registry
	ticksTotal     *prometheus.CounterVec
	syncLatency    prometheus.Histogram
	activePatches  prometheus.Gauge
	avgTickSeconds *atomicfloat.Float64
	tickSamples    *atomicfloat.Float64
}

// New builds a Metrics instance with a fresh, private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	ticksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patchsim",
		Name:      "ticks_total",
		Help:      "Number of ticks completed, by patch id.",
	}, []string{"patch_id"})

	syncLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "patchsim",
		Name:      "sync_latency_seconds",
		Help:      "Time spent blocked in a padding-channel synchronization phase.",
		Buckets:   prometheus.DefBuckets,
	})

	activePatches := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "patchsim",
		Name:      "active_patches",
		Help:      "Number of patch workers currently running.",
	})

	m := &Metrics{
		registry:       registry,
		ticksTotal:     ticksTotal,
		syncLatency:    syncLatency,
		activePatches:  activePatches,
		avgTickSeconds: atomicfloat.NewFloat64(0),
		tickSamples:    atomicfloat.NewFloat64(0),
	}

	avgTickGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "patchsim",
		Name:      "avg_tick_seconds",
		Help:      "Running average of per-tick local-simulation duration across all patches.",
	}, m.averageTickSeconds)

	registry.MustRegister(ticksTotal, syncLatency, activePatches, avgTickGauge)
	return m
}

// Handler returns an http.Handler serving this Metrics instance's registry
// in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WorkerStarted increments the active-patch gauge; call once per worker at
// startup.
func (m *Metrics) WorkerStarted() {
	m.activePatches.Inc()
}

// WorkerStopped decrements the active-patch gauge; call once per worker on
// exit, success or failure alike.
func (m *Metrics) WorkerStopped() {
	m.activePatches.Dec()
}

// ObserveSync records how long a synchronization phase took to complete.
func (m *Metrics) ObserveSync(seconds float64) {
	m.syncLatency.Observe(seconds)
}

// RecordTick increments the tick counter for patchID and folds seconds into
// the running average tick duration.
func (m *Metrics) RecordTick(patchID string, seconds float64) {
	m.ticksTotal.WithLabelValues(patchID).Inc()
	m.avgTickSeconds.Add(seconds)
	m.tickSamples.Add(1)
}

func (m *Metrics) averageTickSeconds() float64 {
	samples := m.tickSamples.Load()
	if samples == 0 {
		return 0
	}
	return m.avgTickSeconds.Load() / samples
}
