package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversation turn metrics
var (
	// Turn counters by kind (message, confirmation) and outcome
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "turns_total",
			Help:      "Total conversation turns",
		},
		[]string{"kind", "outcome"},
	)

	// Turn duration histogram
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "turn_duration_seconds",
			Help:      "Conversation turn duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	// Model calls by whether tools were offered
	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "llm_calls_total",
			Help:      "Total language model calls",
		},
		[]string{"use_tools", "outcome"},
	)

	// Model call duration histogram
	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "llm_call_duration_seconds",
			Help:      "Language model call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"use_tools"},
	)

	// Confirmation lifecycle counters
	ConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "confirmations_total",
			Help:      "Confirmation proposals and decisions",
		},
		[]string{"confirmation_type", "decision"},
	)
)

// Recorder feeds orchestration events into the Prometheus collectors above.
type Recorder struct{}

// NewRecorder returns a recorder bound to the default registry.
func NewRecorder() Recorder {
	return Recorder{}
}

func (Recorder) ObserveTurn(kind, outcome string, elapsed time.Duration) {
	TurnsTotal.WithLabelValues(kind, outcome).Inc()
	TurnDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (Recorder) ObserveToolCall(name, status string, elapsed time.Duration) {
	RecordToolCall(name, status, elapsed.Seconds())
}

func (Recorder) ObserveGateway(useTools bool, outcome string, elapsed time.Duration) {
	label := strconv.FormatBool(useTools)
	GatewayCallsTotal.WithLabelValues(label, outcome).Inc()
	GatewayDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (Recorder) ObserveConfirmation(confirmationType, decision string) {
	ConfirmationsTotal.WithLabelValues(confirmationType, decision).Inc()
}
