package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the simulator.
type Metrics struct {
	// Message metrics
	MessagesSent     *prometheus.CounterVec
	MessagesReceived prometheus.Counter
	MessageLatency   prometheus.Histogram

	// Worker metrics
	WorkersActive prometheus.Gauge
	WorkersFrozen prometheus.Gauge

	// Diagnostics metrics
	DeadlockActive prometheus.Gauge

	// Run metrics
	RunsTotal prometheus.Counter
	Uptime    prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
}

// New creates a metrics collector backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		MessagesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipcsim_messages_sent_total",
				Help: "Total messages sent, by worker",
			},
			[]string{"worker"},
		),
		MessagesReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ipcsim_messages_received_total",
				Help: "Total messages received across all workers",
			},
		),
		MessageLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ipcsim_message_latency_seconds",
				Help:    "Send-to-receive latency of delivered messages",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		WorkersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ipcsim_workers_active",
				Help: "Workers currently running",
			},
		),
		WorkersFrozen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ipcsim_workers_frozen",
				Help: "Workers blocked in the deadlock demo",
			},
		),
		DeadlockActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ipcsim_deadlock_active",
				Help: "1 while the diagnostics alert reports a deadlock cycle",
			},
		),
		RunsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ipcsim_runs_total",
				Help: "Simulation runs started",
			},
		),
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ipcsim_run_uptime_seconds",
				Help: "Seconds since the current run started",
			},
		),
		registry:  registry,
		startTime: time.Now(),
	}
}

// Registry returns the underlying registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MarkRunStart resets the run clock and counts the run.
func (m *Metrics) MarkRunStart(workers int) {
	m.startTime = time.Now()
	m.RunsTotal.Inc()
	m.WorkersActive.Set(float64(workers))
	m.WorkersFrozen.Set(0)
	m.DeadlockActive.Set(0)
}

// MarkRunStop clears per-run gauges.
func (m *Metrics) MarkRunStop() {
	m.WorkersActive.Set(0)
	m.DeadlockActive.Set(0)
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
