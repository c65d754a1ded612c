// Package metrics exposes the Prometheus instruments of the backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback reasons.
const (
	ReasonUnavailable     = "unavailable"
	ReasonParseError      = "parse_error"
	ReasonSchemaError     = "schema_error"
	ReasonExtractionError = "extraction_error"
)

// Fallback operations.
const (
	OperationJudgement = "judgement"
	OperationReply     = "reply"
	OperationATS       = "ats"
)

var (
	// AIFallbacks counts responses served from defaults instead of model output.
	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echoprep_ai_fallbacks_total",
			Help: "Total number of AI results replaced by fallback defaults",
		},
		[]string{"operation", "reason"},
	)

	// InterviewPersistFailures counts graded interviews that could not be stored.
	InterviewPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "echoprep_interview_persist_failures_total",
			Help: "Total number of graded interviews returned to the client unsaved",
		},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echoprep_ai_requests_total",
			Help: "Total number of AI model requests by outcome",
		},
		[]string{"operation", "outcome"}, // success, failure, rejected
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "echoprep_ai_request_duration_seconds",
			Help:    "Duration of AI model requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"operation"},
	)

	// AICircuitState is 0 closed, 1 half-open, 2 open.
	AICircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "echoprep_ai_circuit_state",
			Help: "State of the AI circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordFallback increments the fallback counter.
func RecordFallback(operation, reason string) {
	AIFallbacks.WithLabelValues(operation, reason).Inc()
}
