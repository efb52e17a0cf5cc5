// Package server exposes the bridge over HTTP: stateless pooled
// evaluation, long-lived registered contexts with eval/call/stop/heap
// operations, prometheus metrics, and health endpoints.
package server
