// internal/metrics/metrics.go
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDurationSeconds is a histogram for HTTP API request latencies
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of response latency (seconds) of HTTP API requests.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	// GRPCServerHandlingSeconds is a histogram for gRPC server request latencies
	GRPCServerHandlingSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_server_handling_seconds",
			Help:    "Histogram of response latency (seconds) of gRPC that had been application-level handled by the server.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "code"},
	)

	// InferenceLatencySeconds is a histogram for model-call latency
	InferenceLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inference_latency_seconds",
			Help:    "Histogram of model inference latency (seconds) excluding transport overhead.",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .025, .05, .1, .25},
		},
	)

	// PredictionsTotal counts successful predictions by class label
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful predictions by class label.",
		},
		[]string{"class"},
	)

	// InferenceErrorsTotal counts failed model calls
	InferenceErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inference_errors_total",
			Help: "Total number of model calls that failed.",
		},
	)

	// ValidationFailuresTotal counts rejected requests by failure type
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of requests rejected by input validation.",
		},
		[]string{"type"},
	)

	// ModelInfo is set to 1 for the loaded model
	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_info",
			Help: "Information about the loaded model (value is always 1).",
		},
		[]string{"path", "engine"},
	)

	// HealthStatus is a gauge indicating the health status of the service
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_status",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy).",
		},
	)
)

// RecordHTTPLatency records the latency of an HTTP API request
func RecordHTTPLatency(method, route string, status int, seconds float64) {
	HTTPRequestDurationSeconds.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}

// RecordGRPCLatency records the latency of a gRPC method call
func RecordGRPCLatency(method, code string, seconds float64) {
	GRPCServerHandlingSeconds.WithLabelValues(method, code).Observe(seconds)
}

// RecordInferenceLatency records the latency of an inference call
func RecordInferenceLatency(seconds float64) {
	InferenceLatencySeconds.Observe(seconds)
}

// RecordPrediction counts a successful prediction
func RecordPrediction(label int) {
	PredictionsTotal.WithLabelValues(strconv.Itoa(label)).Inc()
}

// RecordInferenceError counts a failed model call
func RecordInferenceError() {
	InferenceErrorsTotal.Inc()
}

// RecordValidationFailure counts a rejected request
func RecordValidationFailure(kind string) {
	ValidationFailuresTotal.WithLabelValues(kind).Inc()
}

// SetModelInfo publishes which model artifact is being served
func SetModelInfo(path, engine string) {
	ModelInfo.WithLabelValues(path, engine).Set(1)
}

// SetHealthy sets the health status to healthy
func SetHealthy() {
	HealthStatus.Set(1)
}

// SetUnhealthy sets the health status to unhealthy
func SetUnhealthy() {
	HealthStatus.Set(0)
}
