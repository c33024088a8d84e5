// Package metrics provides Prometheus instrumentation for brakepedal components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "brakepedal"

// Registry holds all metric instances for brakepedal components.
type Registry struct {
	// Policy Metrics
	ChecksTotal     *prometheus.CounterVec
	LimiterOutcomes *prometheus.CounterVec
	LocksEngaged    *prometheus.CounterVec
	CheckDuration   *prometheus.HistogramVec

	// Repository Metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// Local Cache Metrics
	CacheEntries   *prometheus.GaugeVec
	CacheEvictions *prometheus.CounterVec

	// Async Dispatcher Metrics
	DispatcherQueued *prometheus.GaugeVec
	DispatcherActive *prometheus.GaugeVec
	DispatcherTasks  *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by brakepedal components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a registry honouring the namespace and
// constant labels of config.
func NewRegistryWithConfig(config Config) *Registry {
	factory := promauto.With(config.Registry)

	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	labels := config.Labels

	return &Registry{
		ChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "policy",
				Name:        "checks_total",
				Help:        "Total number of policy checks by outcome",
				ConstLabels: labels,
			},
			[]string{"policy", "outcome"},
		),

		LimiterOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "policy",
				Name:        "limiter_outcomes_total",
				Help:        "Per-limiter evaluation results",
				ConstLabels: labels,
			},
			[]string{"policy", "limiter", "state"},
		),

		LocksEngaged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "policy",
				Name:        "locks_engaged_total",
				Help:        "Total number of locks installed after a limiter was exceeded",
				ConstLabels: labels,
			},
			[]string{"policy", "limiter"},
		),

		CheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "policy",
				Name:        "check_duration_seconds",
				Help:        "Time spent evaluating all limiters of a policy",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"policy"},
		),

		StoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "repository",
				Name:        "operations_total",
				Help:        "Total number of repository operations by status",
				ConstLabels: labels,
			},
			[]string{"backend", "operation", "status"},
		),

		StoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "repository",
				Name:        "operation_duration_seconds",
				Help:        "Latency of repository operations",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"backend", "operation"},
		),

		CacheEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "cache",
				Name:        "entries",
				Help:        "Number of entries held by the local cache",
				ConstLabels: labels,
			},
			[]string{"cache"},
		),

		CacheEvictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "cache",
				Name:        "evictions_total",
				Help:        "Expired entries removed by the janitor",
				ConstLabels: labels,
			},
			[]string{"cache"},
		),

		DispatcherQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "async",
				Name:        "queued_tasks",
				Help:        "Number of queued asynchronous operations",
				ConstLabels: labels,
			},
			[]string{"dispatcher"},
		),

		DispatcherActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "async",
				Name:        "active_workers",
				Help:        "Number of workers currently running an operation",
				ConstLabels: labels,
			},
			[]string{"dispatcher"},
		),

		DispatcherTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "async",
				Name:        "tasks_total",
				Help:        "Asynchronous operations completed by status",
				ConstLabels: labels,
			},
			[]string{"dispatcher", "status"},
		),
	}
}
