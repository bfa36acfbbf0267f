package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"credit-risk/internal/ml"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrModelUnavailable is returned for every submission when the artifacts
// did not load at startup.
var ErrModelUnavailable = errors.New("model is not loaded, prediction unavailable")

// MetricsInterface is the subset of service metrics the assessor records.
type MetricsInterface interface {
	AssessmentInc(tier string)
	AssessmentFailureInc()
	ProbabilityObserve(p float64)
	LatencyObserve(seconds float64)
	ExplainerFallbackInc()
	ExplainerFailureInc()
}

type noopMetrics struct{}

func (noopMetrics) AssessmentInc(string)       {}
func (noopMetrics) AssessmentFailureInc()      {}
func (noopMetrics) ProbabilityObserve(float64) {}
func (noopMetrics) LatencyObserve(float64)     {}
func (noopMetrics) ExplainerFallbackInc()      {}
func (noopMetrics) ExplainerFailureInc()       {}

// Context is everything loaded once at startup. It is never modified after
// NewContext returns, so it is safe to share between concurrent requests.
type Context struct {
	model      ml.Classifier
	schema     ml.FeatureSchema
	provider   ml.AttributionProvider
	labels     Labels
	importance []ml.Importance
	loaded     bool
	loadErr    error
	modelTime  time.Time
}

// NewContext captures the loaded artifacts. A nil provider means signed
// attribution is off.
func NewContext(arts *ml.Artifacts, provider ml.AttributionProvider, labels Labels) *Context {
	if provider == nil {
		provider = ml.ImportanceOnly{}
	}
	if labels == nil {
		labels = DefaultLabels
	}

	rc := &Context{
		schema:    append(ml.FeatureSchema(nil), arts.Features...),
		provider:  provider,
		labels:    labels,
		loaded:    arts.Loaded && arts.Model != nil,
		loadErr:   arts.Err,
		modelTime: arts.ModelCreated,
	}
	if rc.loaded {
		rc.model = arts.Model
		rc.importance = ml.RankImportances(rc.schema, arts.Model.FeatureImportances())
	}
	return rc
}

// Schema returns a copy of the feature order.
func (rc *Context) Schema() ml.FeatureSchema {
	return append(ml.FeatureSchema(nil), rc.schema...)
}

// LoadErr is the reason the artifacts did not load, or nil.
func (rc *Context) LoadErr() error { return rc.loadErr }

func (rc *Context) Labels() Labels { return rc.labels }

func (rc *Context) ProviderName() string { return rc.provider.Name() }

func (rc *Context) ModelTime() time.Time { return rc.modelTime }

// Importance returns the ranked global importances, or nil when no model is
// loaded.
func (rc *Context) Importance() []ml.Importance {
	if rc.importance == nil {
		return nil
	}
	return append([]ml.Importance(nil), rc.importance...)
}

// Assessment is the full result of one submission.
type Assessment struct {
	RequestID   string        `json:"request_id"`
	Input       []float64     `json:"input"`
	Prediction  ml.Prediction `json:"prediction"`
	Tier        Tier          `json:"tier"`
	Severity    Severity      `json:"severity"`
	Message     string        `json:"message"`
	Explanation Explanation   `json:"explanation"`
	Latency     time.Duration `json:"latency_ns"`
}

// Assessor runs the per-submission pipeline.
type Assessor struct {
	rc      *Context
	metrics MetricsInterface
}

func NewAssessor(rc *Context, metrics MetricsInterface) *Assessor {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Assessor{rc: rc, metrics: metrics}
}

func (a *Assessor) Context() *Context {
	return a.rc
}

// Assess predicts, tiers and explains x, which must follow the schema order.
// It fails with ErrModelUnavailable when nothing is loaded and with an error
// wrapping ml.ErrPrediction when the classifier rejects x. Explainer problems
// never fail the call: they degrade the Explanation instead.
func (a *Assessor) Assess(ctx context.Context, x []float64) (*Assessment, error) {
	start := time.Now()

	if !a.rc.loaded {
		a.metrics.AssessmentFailureInc()
		if a.rc.loadErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, a.rc.loadErr)
		}
		return nil, ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(x) != len(a.rc.schema) {
		a.metrics.AssessmentFailureInc()
		return nil, fmt.Errorf("%w: got %d values for %d features", ml.ErrPrediction, len(x), len(a.rc.schema))
	}

	input := append([]float64(nil), x...)
	requestID := uuid.NewString()

	pred, err := a.predict(input)
	if err != nil {
		a.metrics.AssessmentFailureInc()
		log.Error().Err(err).Str("request_id", requestID).Msg("prediction failed")
		return nil, err
	}

	tier := TierFor(pred.Probability)
	explanation := a.explain(ctx, requestID, input)

	latency := time.Since(start)
	a.metrics.AssessmentInc(tier.String())
	a.metrics.ProbabilityObserve(pred.Probability)
	a.metrics.LatencyObserve(latency.Seconds())

	log.Debug().
		Str("request_id", requestID).
		Float64("probability", pred.Probability).
		Str("tier", tier.String()).
		Str("explanation", string(explanation.Kind)).
		Dur("latency", latency).
		Msg("assessment complete")

	return &Assessment{
		RequestID:   requestID,
		Input:       input,
		Prediction:  pred,
		Tier:        tier,
		Severity:    tier.Severity(),
		Message:     tier.Message(),
		Explanation: explanation,
		Latency:     latency,
	}, nil
}

func (a *Assessor) predict(x []float64) (pred ml.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: classifier panic: %v", ml.ErrPrediction, r)
		}
	}()

	pred, err = a.rc.model.Predict(x)
	if err != nil {
		if errors.Is(err, ml.ErrPrediction) {
			return ml.Prediction{}, err
		}
		return ml.Prediction{}, fmt.Errorf("%w: %v", ml.ErrPrediction, err)
	}
	if pred.Probability < 0 || pred.Probability > 1 || math.IsNaN(pred.Probability) {
		return ml.Prediction{}, fmt.Errorf("%w: probability %v outside [0, 1]", ml.ErrPrediction, pred.Probability)
	}
	return pred, nil
}

func (a *Assessor) explain(ctx context.Context, requestID string, x []float64) Explanation {
	attr, err := a.attribute(ctx, x)
	switch {
	case err == nil:
		return Present(attr, nil, a.rc.labels)
	case errors.Is(err, ml.ErrExplainerUnavailable):
		a.metrics.ExplainerFallbackInc()
		return Present(nil, a.rc.importance, a.rc.labels)
	default:
		a.metrics.ExplainerFailureInc()
		log.Warn().Err(err).Str("request_id", requestID).Msg("attribution failed, continuing without explanation")
		return Unexplained(fmt.Sprintf("The explanation could not be computed: %v. The prediction is shown without it.", err))
	}
}

func (a *Assessor) attribute(ctx context.Context, x []float64) (attr *ml.Attribution, err error) {
	defer func() {
		if r := recover(); r != nil {
			attr = nil
			err = fmt.Errorf("%w: explainer panic: %v", ml.ErrExplainerFailure, r)
		}
	}()

	attr, err = a.rc.provider.Explain(ctx, x)
	if err == nil && attr == nil {
		err = fmt.Errorf("%w: empty attribution", ml.ErrExplainerFailure)
	}
	return attr, err
}
