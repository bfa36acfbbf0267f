package risk

import (
	"context"
	"sync"

	"credit-risk/internal/ml"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu            sync.Mutex
	assessments   map[string]int
	failures      int
	fallbacks     int
	explainerErrs int
	latencySum    float64
	probabilities []float64
}

func (m *MockMetrics) AssessmentInc(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.assessments == nil {
		m.assessments = make(map[string]int)
	}
	m.assessments[tier]++
}

func (m *MockMetrics) AssessmentFailureInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) ProbabilityObserve(p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probabilities = append(m.probabilities, p)
}

func (m *MockMetrics) LatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) ExplainerFallbackInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *MockMetrics) ExplainerFailureInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.explainerErrs++
}

func (m *MockMetrics) Assessments(tier string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assessments[tier]
}

func (m *MockMetrics) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

func (m *MockMetrics) Fallbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fallbacks
}

func (m *MockMetrics) ExplainerFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.explainerErrs
}

// StubClassifier returns a fixed prediction for any input of the right
// length.
type StubClassifier struct {
	Features    int
	Probability float64
	Importances []float64
	Err         error
	Panic       bool
}

func (s *StubClassifier) NumFeatures() int { return s.Features }

func (s *StubClassifier) Predict(x []float64) (ml.Prediction, error) {
	if s.Panic {
		panic("stub classifier")
	}
	if s.Err != nil {
		return ml.Prediction{}, s.Err
	}
	label := 0
	if s.Probability > 0.5 {
		label = 1
	}
	return ml.Prediction{Label: label, Probability: s.Probability}, nil
}

func (s *StubClassifier) FeatureImportances() []float64 {
	return append([]float64(nil), s.Importances...)
}

// StubProvider returns a fixed attribution keyed by feature name. Features
// missing from Values get zero.
type StubProvider struct {
	Schema ml.FeatureSchema
	Values map[string]float64
	Err    error
	Panic  bool
}

func (s *StubProvider) Name() string { return "stub" }

func (s *StubProvider) Explain(ctx context.Context, x []float64) (*ml.Attribution, error) {
	if s.Panic {
		panic("stub provider")
	}
	if s.Err != nil {
		return nil, s.Err
	}
	attr := &ml.Attribution{Contributions: make([]ml.Contribution, len(s.Schema))}
	for i, f := range s.Schema {
		attr.Contributions[i] = ml.Contribution{Feature: f, Value: s.Values[f]}
	}
	return attr, nil
}

// LoadedArtifacts wraps model as a successfully loaded artifact set over the
// default feature schema.
func LoadedArtifacts(model ml.Classifier) *ml.Artifacts {
	return &ml.Artifacts{
		Model:    model,
		Features: append(ml.FeatureSchema(nil), ml.DefaultFeatures...),
		Loaded:   true,
	}
}
