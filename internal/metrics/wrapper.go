package metrics

// MetricsWrapper adapts Metrics to the narrow interfaces consumed by the
// scoring and dashboard packages.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) AssessmentInc(tier string) {
	w.m.Assessments.Inc()
	w.m.TierTotal.WithLabelValues(tier).Inc()
}

func (w *MetricsWrapper) AssessmentFailureInc() {
	w.m.AssessmentFailures.Inc()
}

func (w *MetricsWrapper) ProbabilityObserve(p float64) {
	w.m.Probabilities.Observe(p)
}

func (w *MetricsWrapper) LatencyObserve(seconds float64) {
	w.m.Latency.Observe(seconds)
}

func (w *MetricsWrapper) ExplainerFallbackInc() {
	w.m.ExplainerFallbacks.Inc()
}

func (w *MetricsWrapper) ExplainerFailureInc() {
	w.m.ExplainerFailures.Inc()
}

func (w *MetricsWrapper) InvalidInputInc() {
	w.m.InvalidInputs.Inc()
}

// SetModelState records whether artifacts loaded and the model age.
func (w *MetricsWrapper) SetModelState(loaded bool, ageSeconds float64) {
	if loaded {
		w.m.ModelLoaded.Set(1)
		w.m.ModelAge.Set(ageSeconds)
		return
	}
	w.m.ModelLoaded.Set(0)
	w.m.ModelAge.Set(0)
}
