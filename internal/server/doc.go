// Package server exposes the coordinator's status/log/alert surface over
// HTTP and WebSocket.
//
// This is the boundary a front end consumes; it renders and relays text
// produced by the core but carries no simulation logic of its own.
// Endpoints: run control (/start, /stop, /export), polled state (/status,
// /timeline, /alert), Prometheus metrics (/metrics), and a live log-line
// stream (/stream).
package server
