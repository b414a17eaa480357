// Package worker drives one simulated process: a tight poll loop that
// alternates receive-with-backoff and randomized sends over a shared
// channel until stopped or the transport fails.
//
// Two designated workers can additionally run the deadlock demo, acquiring
// two shared locks in opposite order so that each blocks forever on the
// lock its counterpart holds. That freeze is deliberate demonstration
// behavior for the diagnostics engine, not a bug to be fixed.
//
// Workers report through a plain-text log stream. The line shapes are a
// contract: the coordinator parses them by prefix and keyword to drive
// metrics and visualizations, so they must be preserved bit-for-bit.
package worker
