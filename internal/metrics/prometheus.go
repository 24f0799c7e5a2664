// Package metrics defines the Prometheus instrumentation for the
// WSJT-X UDP monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the monitor.
type Metrics struct {
	// UDP datagram metrics
	DatagramsReceived prometheus.Counter
	MessagesDecoded   *prometheus.CounterVec
	DecodeErrors      *prometheus.CounterVec
	MessagesSent      *prometheus.CounterVec

	// Live feed metrics
	FeedClients  prometheus.Gauge
	FeedDropped  prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		DatagramsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wsjtx_datagrams_received_total",
			Help: "Total number of UDP datagrams received",
		}),
		MessagesDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wsjtx_messages_decoded_total",
			Help: "Total number of messages decoded, by message type",
		}, []string{"type"}),
		DecodeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wsjtx_decode_errors_total",
			Help: "Total number of datagrams that failed to decode, by reason",
		}, []string{"reason"}),
		MessagesSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wsjtx_messages_sent_total",
			Help: "Total number of command messages sent, by message type",
		}, []string{"type"}),

		FeedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wsjtx_feed_clients",
			Help: "Current number of connected live feed clients",
		}),
		FeedDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wsjtx_feed_dropped_total",
			Help: "Total number of feed messages dropped on slow clients",
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wsjtx_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wsjtx_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// RecordDatagramReceived increments the datagrams received counter.
func (m *Metrics) RecordDatagramReceived() {
	m.DatagramsReceived.Inc()
}

// RecordMessageDecoded increments the decoded counter for a type.
func (m *Metrics) RecordMessageDecoded(msgType string) {
	m.MessagesDecoded.WithLabelValues(msgType).Inc()
}

// RecordDecodeError increments the decode error counter for a reason.
func (m *Metrics) RecordDecodeError(reason string) {
	m.DecodeErrors.WithLabelValues(reason).Inc()
}

// RecordMessageSent increments the sent counter for a type.
func (m *Metrics) RecordMessageSent(msgType string) {
	m.MessagesSent.WithLabelValues(msgType).Inc()
}

// SetFeedClients sets the current number of feed clients.
func (m *Metrics) SetFeedClients(count int) {
	m.FeedClients.Set(float64(count))
}

// RecordFeedDropped increments the dropped feed message counter.
func (m *Metrics) RecordFeedDropped() {
	m.FeedDropped.Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
