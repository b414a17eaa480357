// Package coordinator orchestrates simulation runs: it creates the shared
// channel and diagnostics engine, spawns the worker goroutines, drains
// their log stream, derives metrics and alerts, and forwards stop signals.
//
// The coordinator never touches channel internals; it consumes only the
// workers' plain-text log lines, parsing them by prefix and keyword the
// same way the original front end does. It performs no automated recovery:
// errors and deadlock findings are surfaced as text and nothing more.
package coordinator
