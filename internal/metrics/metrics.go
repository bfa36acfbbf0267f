// Package metrics provides Prometheus metrics collection for the credit-risk
// service. It covers assessments, tier distribution, explainer fallbacks and
// latency, and is exposed through the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Assessment metrics
	Assessments        prometheus.Counter     // Completed assessments
	AssessmentFailures prometheus.Counter     // Submissions that produced no prediction
	TierTotal          *prometheus.CounterVec // Assessments by risk tier
	Probabilities      prometheus.Histogram   // Distribution of predicted default probabilities
	Latency            prometheus.Histogram   // End-to-end assessment latency

	// Explanation metrics
	ExplainerFallbacks prometheus.Counter // Explanations served from global importances
	ExplainerFailures  prometheus.Counter // Explanations omitted after an explainer error

	// Model metrics
	ModelLoaded prometheus.Gauge // 1 when artifacts loaded, 0 in degraded mode
	ModelAge    prometheus.Gauge // Age of the model artifact in seconds

	// Input metrics
	InvalidInputs prometheus.Counter // Form submissions rejected by field validation
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Assessments: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_assessments_total",
			Help: "Total number of completed credit risk assessments",
		}),
		AssessmentFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_assessment_failures_total",
			Help: "Total number of submissions that produced no prediction",
		}),
		TierTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_risk_tier_total",
			Help: "Assessments by risk tier",
		}, []string{"tier"}),
		Probabilities: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "credit_default_probability",
			Help:    "Distribution of predicted default probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		Latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "credit_assessment_latency_seconds",
			Help:    "Assessment latency in seconds, prediction plus explanation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		ExplainerFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_explainer_fallback_total",
			Help: "Total number of explanations served from global feature importances",
		}),
		ExplainerFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_explainer_failures_total",
			Help: "Total number of explanations omitted after an explainer error",
		}),
		ModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "credit_model_loaded",
			Help: "1 when model artifacts are loaded, 0 in degraded mode",
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "credit_model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
		InvalidInputs: factory.NewCounter(prometheus.CounterOpts{
			Name: "credit_invalid_inputs_total",
			Help: "Total number of form submissions rejected by field validation",
		}),
	}
}
