package prometheus

import (
	"time"

	"circuit-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Circuit metrics
	CircuitOperationsCounter prometheus.CounterVec

	// Circuit class metrics
	CircuitClassOperationsCounter prometheus.CounterVec

	// Validation metrics
	ValidationFailuresCounter prometheus.CounterVec

	// Property search metrics
	PropertySearchCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Circuit metrics
	CircuitOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Total number of circuit operations",
		},
		[]string{"operation"},
	)

	// Circuit class metrics
	CircuitClassOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_class_operations_total",
			Help: "Total number of circuit class operations",
		},
		[]string{"operation"},
	)

	// Validation failure metrics
	ValidationFailuresCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_validation_failures_total",
			Help: "Total number of rejected create/update submissions",
		},
		[]string{"resource"},
	)

	// Property search metrics
	PropertySearchCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_property_searches_total",
			Help: "Total number of property value searches",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCircuitOperation increments the counter for circuit operations
func RecordCircuitOperation(operation string) {
	CircuitOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCircuitClassOperation increments the counter for circuit class operations
func RecordCircuitClassOperation(operation string) {
	CircuitClassOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordValidationFailure increments the counter for rejected submissions
func RecordValidationFailure(resource string) {
	ValidationFailuresCounter.WithLabelValues(resource).Inc()
}

// RecordPropertySearch increments the counter for property value searches
func RecordPropertySearch() {
	PropertySearchCounter.Inc()
}
