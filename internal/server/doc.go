// Package server exposes reserve-it's operational HTTP endpoints on a
// dedicated port: Prometheus metrics on /metrics and Kubernetes-style
// liveness and readiness probes on /healthz, /readyz and /healthz/detailed.
//
// The server is optional and only started when METRICS_ENABLED is true.
// Readiness flips to ok once the poll loop is running.
package server
