package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "casegraph"

var (
	// Labels: kind (entity, event, flow)
	recordsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "records_loaded_total",
		Help:      "Case records loaded into the store",
	}, []string{"kind"})

	// Labels: kind (entity, event, flow, document)
	recordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "records_skipped_total",
		Help:      "Malformed case records skipped during ingest",
	}, []string{"kind"})

	// Labels: stage (roles, significance, relations, flows, report)
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each analysis stage",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"stage"})

	// Labels: level (low, medium, high, critical)
	riskLevels = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "reports_total",
		Help:      "Completed analyses by overall risk level",
	}, []string{"level"})

	// Labels: tool, status (ok, error)
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mcp",
		Name:      "tool_calls_total",
		Help:      "MCP tool invocations",
	}, []string{"tool", "status"})
)

func RecordLoaded(kind string) {
	recordsLoaded.WithLabelValues(kind).Inc()
}

func RecordSkipped(kind string) {
	recordsSkipped.WithLabelValues(kind).Inc()
}

// ObserveStage records the time elapsed since start for an analysis stage.
func ObserveStage(stage string, start time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func RecordReport(level string) {
	riskLevels.WithLabelValues(level).Inc()
}

func RecordToolCall(tool string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	toolCalls.WithLabelValues(tool, status).Inc()
}
