package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the planner. All record methods
// are safe to call on a nil or disabled Metrics.
type Metrics struct {
	config MetricsConfig

	// Action metrics
	actionsRegistered *prometheus.CounterVec
	actionsCancelled  *prometheus.CounterVec
	actionsPruned     prometheus.Counter

	// Plan metrics
	plansComputed *prometheus.CounterVec
	planActions   prometheus.Histogram
	sortDuration  prometheus.Histogram

	// Device graph metrics
	treeDevices prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
// When cfg.Enabled is false a no-op instance is returned.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		actionsRegistered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_registered_total",
				Help:      "Total number of actions registered",
			},
			[]string{"op", "object"},
		),
		actionsCancelled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_cancelled_total",
				Help:      "Total number of actions cancelled",
			},
			[]string{"op", "object"},
		),
		actionsPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_pruned_total",
				Help:      "Total number of actions removed by pruning",
			},
		),
		plansComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_computed_total",
				Help:      "Total number of plans computed",
			},
			[]string{"status"},
		),
		planActions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_actions",
				Help:      "Number of actions in computed plans",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
		),
		sortDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sort_duration_seconds",
				Help:      "Duration of topological sorts in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		treeDevices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tree_devices",
				Help:      "Current number of devices in the tree",
			},
		),
	}

	registry.MustRegister(
		m.actionsRegistered,
		m.actionsCancelled,
		m.actionsPruned,
		m.plansComputed,
		m.planActions,
		m.sortDuration,
		m.treeDevices,
	)

	return m, nil
}

// RecordActionRegistered increments the registered-action counter.
func (m *Metrics) RecordActionRegistered(op, object string) {
	if m == nil || m.actionsRegistered == nil {
		return
	}
	m.actionsRegistered.WithLabelValues(op, object).Inc()
}

// RecordActionCancelled increments the cancelled-action counter.
func (m *Metrics) RecordActionCancelled(op, object string) {
	if m == nil || m.actionsCancelled == nil {
		return
	}
	m.actionsCancelled.WithLabelValues(op, object).Inc()
}

// RecordActionsPruned adds n to the pruned-action counter.
func (m *Metrics) RecordActionsPruned(n int) {
	if m == nil || m.actionsPruned == nil || n <= 0 {
		return
	}
	m.actionsPruned.Add(float64(n))
}

// RecordPlanComputed records a computed plan with its action count.
func (m *Metrics) RecordPlanComputed(status string, actions int) {
	if m == nil || m.plansComputed == nil {
		return
	}
	m.plansComputed.WithLabelValues(status).Inc()
	m.planActions.Observe(float64(actions))
}

// RecordSortDuration records the duration of a topological sort.
func (m *Metrics) RecordSortDuration(d time.Duration) {
	if m == nil || m.sortDuration == nil {
		return
	}
	m.sortDuration.Observe(d.Seconds())
}

// SetTreeDevices sets the current device count gauge.
func (m *Metrics) SetTreeDevices(count int) {
	if m == nil || m.treeDevices == nil {
		return
	}
	m.treeDevices.Set(float64(count))
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server exposing the metrics endpoint.
func (m *Metrics) StartMetricsServer() error {
	if m == nil || !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = server.ListenAndServe()
	}()

	return nil
}
