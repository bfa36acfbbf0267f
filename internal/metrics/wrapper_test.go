package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestWrapper(t *testing.T) (*Metrics, *MetricsWrapper) {
	t.Helper()
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	return m, NewWrapper(m)
}

func TestNewWrapper(t *testing.T) {
	m, wrapper := newTestWrapper(t)

	if wrapper == nil {
		t.Fatal("NewWrapper returned nil")
	}
	if wrapper.m != m {
		t.Error("Wrapper does not contain correct metrics instance")
	}
}

func TestMetricsWrapper_AssessmentCounters(t *testing.T) {
	m, wrapper := newTestWrapper(t)

	if v := testutil.ToFloat64(m.Assessments); v != 0 {
		t.Errorf("Expected initial counter value 0, got %f", v)
	}

	wrapper.AssessmentInc("Low")
	wrapper.AssessmentInc("High")
	wrapper.AssessmentInc("High")

	if v := testutil.ToFloat64(m.Assessments); v != 3 {
		t.Errorf("Expected 3 assessments, got %f", v)
	}
	if v := testutil.ToFloat64(m.TierTotal.WithLabelValues("High")); v != 2 {
		t.Errorf("Expected 2 High assessments, got %f", v)
	}
	if v := testutil.ToFloat64(m.TierTotal.WithLabelValues("Medium")); v != 0 {
		t.Errorf("Expected 0 Medium assessments, got %f", v)
	}

	wrapper.AssessmentFailureInc()
	if v := testutil.ToFloat64(m.AssessmentFailures); v != 1 {
		t.Errorf("Expected 1 failure, got %f", v)
	}
}

func TestMetricsWrapper_ExplainerCounters(t *testing.T) {
	m, wrapper := newTestWrapper(t)

	wrapper.ExplainerFallbackInc()
	wrapper.ExplainerFallbackInc()
	wrapper.ExplainerFailureInc()
	wrapper.InvalidInputInc()

	if v := testutil.ToFloat64(m.ExplainerFallbacks); v != 2 {
		t.Errorf("Expected 2 fallbacks, got %f", v)
	}
	if v := testutil.ToFloat64(m.ExplainerFailures); v != 1 {
		t.Errorf("Expected 1 explainer failure, got %f", v)
	}
	if v := testutil.ToFloat64(m.InvalidInputs); v != 1 {
		t.Errorf("Expected 1 invalid input, got %f", v)
	}
}

func TestMetricsWrapper_Histograms(t *testing.T) {
	m, wrapper := newTestWrapper(t)

	wrapper.ProbabilityObserve(0.45)
	wrapper.LatencyObserve(0.002)

	if n := testutil.CollectAndCount(m.Probabilities); n != 1 {
		t.Errorf("Expected 1 probability series, got %d", n)
	}
	if n := testutil.CollectAndCount(m.Latency); n != 1 {
		t.Errorf("Expected 1 latency series, got %d", n)
	}
}

func TestMetricsWrapper_ModelState(t *testing.T) {
	m, wrapper := newTestWrapper(t)

	wrapper.SetModelState(true, 3600)
	if v := testutil.ToFloat64(m.ModelLoaded); v != 1 {
		t.Errorf("Expected model loaded gauge 1, got %f", v)
	}
	if v := testutil.ToFloat64(m.ModelAge); v != 3600 {
		t.Errorf("Expected model age 3600, got %f", v)
	}

	wrapper.SetModelState(false, 3600)
	if v := testutil.ToFloat64(m.ModelLoaded); v != 0 {
		t.Errorf("Expected model loaded gauge 0, got %f", v)
	}
	if v := testutil.ToFloat64(m.ModelAge); v != 0 {
		t.Errorf("Expected model age reset to 0, got %f", v)
	}
}
