// Package ipc implements the inter-process communication channels used by
// the simulator.
//
// Three variants sit behind one capability surface:
//   - Pipe: unidirectional single-slot transport, non-blocking poll
//   - Queue: unbounded FIFO, multi-writer/multi-reader
//   - SharedMem: fixed 256-byte mailbox guarded by one mutex
//
// All variants are intentionally lightweight. They provide best-effort
// delivery only: the pipe and shared-memory variants overwrite an unread
// message on the next send, and every Recv is a bounded poll that returns
// nil when nothing is pending. The shared-memory variant is the only one
// that reports lock contention to the diagnostics engine, via the Observer
// interface.
package ipc
