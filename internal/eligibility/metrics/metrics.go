package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for tuition tier evaluation.
type Metrics struct {
	// Evaluation outcomes by tier
	Outcomes *prometheus.CounterVec

	// Which rule caused a high-tier verdict
	RuleFailures *prometheus.CounterVec

	// Latency of a single evaluation
	EvaluateLatency prometheus.Histogram

	// Size of batch requests
	BatchSize prometheus.Histogram
}

// New creates the eligibility metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in
// tests; a nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tuition_evaluation_outcomes_total",
			Help: "Total tuition evaluations by resulting tier",
		}, []string{"tier"}), // tier: "low", "high"

		RuleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tuition_rule_failures_total",
			Help: "Total evaluations that stopped at a rule, by rule name",
		}, []string{"rule"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tuition_evaluate_duration_seconds",
			Help:    "Duration of a single tuition evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tuition_batch_size",
			Help:    "Number of registrations per batch evaluation request",
			Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000},
		}),
	}
}

// IncrementOutcome records an evaluation outcome.
func (m *Metrics) IncrementOutcome(tier string) {
	if m != nil {
		m.Outcomes.WithLabelValues(tier).Inc()
	}
}

// IncrementRuleFailure records the rule an evaluation stopped at.
func (m *Metrics) IncrementRuleFailure(rule string) {
	if m != nil {
		m.RuleFailures.WithLabelValues(rule).Inc()
	}
}

// ObserveEvaluateLatency records a single evaluation's duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// ObserveBatchSize records the number of registrations in a batch.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
