// Package monitoring exposes Prometheus metrics for simulation runs.
//
// Each Metrics value owns its registry, so independent runs and tests can
// register the same collectors without colliding. The server package serves
// the registry at /metrics.
package monitoring
