// Package config loads simulator configuration from the environment.
//
// All variables use the IPCSIM_ prefix and carry defaults matching the
// reference timings, so a zero-configuration run behaves like the original
// demonstration: 10ms loop tick, 100ms shared-memory wait, 150ms contention
// hold, 2s idle threshold.
package config
