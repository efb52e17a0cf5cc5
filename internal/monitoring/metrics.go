package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bridge service.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Engine metrics
	OpsTotal            *prometheus.CounterVec
	OpDuration          *prometheus.HistogramVec
	Terminations        prometheus.Counter
	ConversionFallbacks prometheus.Counter
	ContextsActive      prometheus.Gauge
	ContextsTotal       prometheus.Counter

	startTime time.Time
}

// New creates a metrics collector registered on the default registry.
func New() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jsbridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		OpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsbridge_engine_ops_total",
				Help: "Total number of evaluate/call operations",
			},
			[]string{"op", "outcome"},
		),
		OpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jsbridge_engine_op_duration_seconds",
				Help:    "Evaluate/call duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"op"},
		),
		Terminations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jsbridge_engine_terminations_total",
				Help: "Total number of forced script terminations",
			},
		),
		ConversionFallbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jsbridge_codec_conversion_fallbacks_total",
				Help: "Host values replaced with the conversion sentinel",
			},
		),
		ContextsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jsbridge_contexts_active",
				Help: "Number of live execution contexts",
			},
		),
		ContextsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jsbridge_contexts_total",
				Help: "Total number of execution contexts created",
			},
		),
	}
}

// RecordHTTPRequest records request metrics.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOp records one evaluate/call operation.
func (m *Metrics) RecordOp(op, outcome string, duration time.Duration) {
	m.OpsTotal.WithLabelValues(op, outcome).Inc()
	m.OpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordTermination counts a forced termination.
func (m *Metrics) RecordTermination() {
	m.Terminations.Inc()
}

// RecordConversionFallbacks counts sentinel substitutions.
func (m *Metrics) RecordConversionFallbacks(n int) {
	m.ConversionFallbacks.Add(float64(n))
}

// ContextCreated tracks a new live context.
func (m *Metrics) ContextCreated() {
	m.ContextsActive.Inc()
	m.ContextsTotal.Inc()
}

// ContextDisposed tracks a released context.
func (m *Metrics) ContextDisposed() {
	m.ContextsActive.Dec()
}

// Uptime returns time since the collector was created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
