package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/retain/pkg/config"
)

// Partition label values for the entries gauge.
const (
	PartitionKeep = "keep"
	PartitionDrop = "drop"
)

// Collector owns the prune metrics and the registry they live in.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	entries       *prometheus.GaugeVec
	parseWarnings *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	lastSuccess   *prometheus.GaugeVec
	journalPruned prometheus.Counter
}

// NewCollector creates a collector and registers its metrics. If registry
// is nil a fresh registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of prune runs",
			},
			[]string{"job", "status"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "entries",
				Help:      "Entries kept and dropped by the most recent run",
			},
			[]string{"job", "partition"},
		),

		parseWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_warnings_total",
				Help:      "Total number of names skipped because they could not be parsed",
			},
			[]string{"job"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "duration_seconds",
				Help:      "Duration of prune runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"job"},
		),

		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
			[]string{"job"},
		),

		journalPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_pruned_total",
				Help:      "Total number of journal runs removed by history trimming",
			},
		),
	}

	registry.MustRegister(
		c.runsTotal,
		c.entries,
		c.parseWarnings,
		c.duration,
		c.lastSuccess,
		c.journalPruned,
	)
	return c
}

// RecordRun records a completed run. Partition gauges are only updated
// for successful runs so a failed listing does not zero them.
func (c *Collector) RecordRun(job, status string, kept, dropped, warnings int, duration time.Duration) {
	if c == nil {
		return
	}

	c.runsTotal.WithLabelValues(job, status).Inc()
	c.duration.WithLabelValues(job).Observe(duration.Seconds())
	if warnings > 0 {
		c.parseWarnings.WithLabelValues(job).Add(float64(warnings))
	}
	if status != "ok" {
		return
	}
	c.entries.WithLabelValues(job, PartitionKeep).Set(float64(kept))
	c.entries.WithLabelValues(job, PartitionDrop).Set(float64(dropped))
	c.lastSuccess.WithLabelValues(job).SetToCurrentTime()
}

// RecordJournalPruned counts journal rows removed by history trimming.
func (c *Collector) RecordJournalPruned(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.journalPruned.Add(float64(n))
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
