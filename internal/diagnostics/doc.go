// Package diagnostics maintains a live wait-for graph over the simulated
// processes and reports deadlock cycles and idle-process bottlenecks.
//
// Edges are added when a process begins waiting on a contended resource and
// removed when the wait resolves; the whole graph is re-evaluated for cycles
// on every mutation. Findings are advisory text only — nothing is ever
// broken up or killed.
package diagnostics
