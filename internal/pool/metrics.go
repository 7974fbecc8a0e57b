package pool

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports pool gauges and counters. The spare gauge is how operators
// notice the accepted over-provisioning drift, since excess spares are never
// reclaimed automatically.
type Metrics struct {
	total        prometheus.Gauge
	available    prometheus.Gauge
	assigned     prometheus.Gauge
	initializing prometheus.Gauge
	spare        prometheus.Gauge

	assignments    prometheus.Counter
	coldStarts     prometheus.Counter
	launches       prometheus.Counter
	launchFailures prometheus.Counter
}

// NewMetrics creates pool metrics and registers them on reg. A nil reg keeps
// the metrics unregistered, which is what unit tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warmpool_instances_total",
			Help: "Total number of instances in the pool.",
		}),
		available: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warmpool_instances_available",
			Help: "Instances ready for assignment.",
		}),
		assigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warmpool_instances_assigned",
			Help: "Instances currently owned by a tenant.",
		}),
		initializing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warmpool_instances_initializing",
			Help: "Instances still booting or unclassifiable.",
		}),
		spare: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warmpool_pool_spare",
			Help: "Spare count (available + initializing).",
		}),
		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warmpool_assignments_total",
			Help: "Successful tenant assignments.",
		}),
		coldStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warmpool_cold_starts_total",
			Help: "Assignments that found the pool empty.",
		}),
		launches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warmpool_launches_total",
			Help: "Successful instance launches.",
		}),
		launchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warmpool_launch_failures_total",
			Help: "Per-location launch failures.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.total, m.available, m.assigned, m.initializing, m.spare,
			m.assignments, m.coldStarts, m.launches, m.launchFailures,
		)
	}
	return m
}

func (m *Metrics) observe(stats Stats) {
	m.total.Set(float64(stats.Total))
	m.available.Set(float64(stats.Available))
	m.assigned.Set(float64(stats.Assigned))
	m.initializing.Set(float64(stats.Initializing))
	m.spare.Set(float64(stats.Spare()))
}
