// Package server provides the HTTP API for the monitor: health and
// statistics endpoints, the sanitized configuration view, Prometheus
// metrics, and a WebSocket feed that streams decoded messages to
// connected clients.
package server
