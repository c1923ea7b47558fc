package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telemetry collects turn-level counters for the /metrics surface.
type Telemetry struct {
	turns        *prometheus.CounterVec
	llmFailures  prometheus.Counter
	turnDuration prometheus.Histogram
}

// New registers the collectors on the default registry.
func New() *Telemetry {
	return &Telemetry{
		turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "partsassist_turns_total",
			Help: "Chat turns handled, by resolved intent.",
		}, []string{"intent"}),
		llmFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partsassist_llm_failures_total",
			Help: "Generative-answer calls that failed or returned unusable output.",
		}),
		turnDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "partsassist_turn_duration_seconds",
			Help:    "Wall time per chat turn.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveTurn records one completed turn.
func (t *Telemetry) ObserveTurn(intent string, d time.Duration) {
	if t == nil {
		return
	}
	t.turns.WithLabelValues(intent).Inc()
	t.turnDuration.Observe(d.Seconds())
}

// LLMFailure records a degraded generative call.
func (t *Telemetry) LLMFailure() {
	if t == nil {
		return
	}
	t.llmFailures.Inc()
}
