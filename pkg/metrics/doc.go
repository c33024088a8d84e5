// Package metrics provides Prometheus instrumentation for brakepedal components.
//
// # Overview
//
// The metrics package covers:
//   - Policy evaluation (checks by outcome, per-limiter states, locks engaged, latency)
//   - Repository operations (calls by backend/operation/status, latency)
//   - The local expiring cache (entries, janitor evictions)
//   - The async dispatcher (queued tasks, active workers, completed tasks)
//
// # Quick Start
//
// Enable metrics through the metrics-enabled constructors:
//
//	repo := throttle.NewRepositoryWithMetrics(memory.New(memory.DefaultConfig()), "memory", metrics.DefaultConfig())
//	p, _ := policy.NewWithMetrics(repo, policy.Config{Name: "api", Limiters: limiters}, metrics.DefaultConfig())
//
// Then expose them via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation (tests do this):
//
//	reg := prometheus.NewRegistry()
//	cfg := metrics.Config{Enabled: true, Registry: reg}
//
// # Available Metrics
//
//   - brakepedal_policy_checks_total{policy,outcome}
//   - brakepedal_policy_limiter_outcomes_total{policy,limiter,state}
//   - brakepedal_policy_locks_engaged_total{policy,limiter}
//   - brakepedal_policy_check_duration_seconds{policy}
//   - brakepedal_repository_operations_total{backend,operation,status}
//   - brakepedal_repository_operation_duration_seconds{backend,operation}
//   - brakepedal_cache_entries{cache}
//   - brakepedal_cache_evictions_total{cache}
//   - brakepedal_async_queued_tasks{dispatcher}
//   - brakepedal_async_active_workers{dispatcher}
//   - brakepedal_async_tasks_total{dispatcher,status}
package metrics
