package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart engine activity.
type CartMetrics struct {
	eventsApplied      *prometheus.CounterVec
	diagnostics        *prometheus.CounterVec
	applyDuration      *prometheus.HistogramVec
	evalCaseDuration   prometheus.Histogram
	evalCasesTotal     prometheus.Counter
	evalCasesExact     prometheus.Counter
	activeSessionCount prometheus.Gauge
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	eventsApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_events_applied_total",
		Help: "Order events applied to carts, by event type.",
	}, []string{"type"})
	diagnostics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_diagnostics_total",
		Help: "Non-fatal diagnostics recorded while applying events.",
	}, []string{"kind"})
	applyDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_apply_duration_seconds",
		Help:    "Duration of a single event application.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	evalCaseDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eval_case_duration_seconds",
		Help:    "Duration of a single evaluation case.",
		Buckets: prometheus.DefBuckets,
	})
	evalCasesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eval_cases_total",
		Help: "Evaluation cases executed.",
	})
	evalCasesExact := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eval_cases_exact_match_total",
		Help: "Evaluation cases that matched the expected cart exactly.",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_active_sessions",
		Help: "Ordering sessions currently registered.",
	})
	reg.MustRegister(eventsApplied, diagnostics, applyDuration, evalCaseDuration, evalCasesTotal, evalCasesExact, activeSessions)
	return &CartMetrics{
		eventsApplied:      eventsApplied,
		diagnostics:        diagnostics,
		applyDuration:      applyDuration,
		evalCaseDuration:   evalCaseDuration,
		evalCasesTotal:     evalCasesTotal,
		evalCasesExact:     evalCasesExact,
		activeSessionCount: activeSessions,
	}
}

// IncEventApplied increments the applied counter for the event type.
func (c *CartMetrics) IncEventApplied(eventType string) {
	if c == nil || c.eventsApplied == nil {
		return
	}
	c.eventsApplied.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDiagnostic increments the diagnostics counter for the given kind.
func (c *CartMetrics) IncDiagnostic(kind string) {
	if c == nil || c.diagnostics == nil {
		return
	}
	c.diagnostics.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveApply records the duration of one event application.
func (c *CartMetrics) ObserveApply(eventType string, duration time.Duration) {
	if c == nil || c.applyDuration == nil {
		return
	}
	c.applyDuration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// ObserveEvalCase records one evaluation case execution.
func (c *CartMetrics) ObserveEvalCase(duration time.Duration, exact bool) {
	if c == nil || c.evalCasesTotal == nil {
		return
	}
	c.evalCaseDuration.Observe(duration.Seconds())
	c.evalCasesTotal.Inc()
	if exact {
		c.evalCasesExact.Inc()
	}
}

// SetActiveSessions sets the active session gauge.
func (c *CartMetrics) SetActiveSessions(n int) {
	if c == nil || c.activeSessionCount == nil {
		return
	}
	c.activeSessionCount.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
