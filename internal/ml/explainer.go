package ml

import (
	"context"
	"errors"
	"fmt"

	"credit-risk/internal/common"

	"github.com/rs/zerolog/log"
)

// Contribution is the signed effect of one feature on a single prediction.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Attribution holds one contribution per schema feature, in schema order,
// relative to BaseValue. Units are log-odds.
type Attribution struct {
	Contributions []Contribution `json:"contributions"`
	BaseValue     float64        `json:"base_value"`
}

// AttributionProvider explains a single prediction.
type AttributionProvider interface {
	// Name identifies the provider in logs and API responses.
	Name() string

	// Explain returns the attribution for x, ErrExplainerUnavailable when
	// this provider cannot produce signed values, or an error wrapping
	// ErrExplainerFailure.
	Explain(ctx context.Context, x []float64) (*Attribution, error)
}

// contributor is implemented by models that can attribute their own output.
type contributor interface {
	SupportsContributions() bool
	Contributions(x []float64) ([]float64, float64, error)
}

// TreeExplainer computes TreeSHAP values over a tree ensemble.
type TreeExplainer struct {
	model  contributor
	schema FeatureSchema
}

// NewTreeExplainer returns a TreeExplainer, or an error if the model cannot
// provide contributions.
func NewTreeExplainer(model Classifier, schema FeatureSchema) (*TreeExplainer, error) {
	c, ok := model.(contributor)
	if !ok || !c.SupportsContributions() {
		return nil, ErrExplainerUnavailable
	}
	if model.NumFeatures() != len(schema) {
		return nil, fmt.Errorf("schema has %d features, model expects %d", len(schema), model.NumFeatures())
	}
	return &TreeExplainer{model: c, schema: schema}, nil
}

func (te *TreeExplainer) Name() string {
	return common.ExplainerTreeSHAP
}

func (te *TreeExplainer) Explain(ctx context.Context, x []float64) (*Attribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phi, base, err := te.model.Contributions(x)
	if errors.Is(err, ErrExplainerUnavailable) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExplainerFailure, err)
	}
	if len(phi) != len(te.schema) {
		return nil, fmt.Errorf("%w: got %d values for %d features", ErrExplainerFailure, len(phi), len(te.schema))
	}

	attr := &Attribution{
		Contributions: make([]Contribution, len(phi)),
		BaseValue:     base,
	}
	for i, v := range phi {
		attr.Contributions[i] = Contribution{Feature: te.schema[i], Value: v}
	}
	return attr, nil
}

// ImportanceOnly is the provider used when signed attribution is disabled
// or unsupported. It always reports ErrExplainerUnavailable so callers rank
// global importances instead.
type ImportanceOnly struct{}

func (ImportanceOnly) Name() string {
	return common.ExplainerNone
}

func (ImportanceOnly) Explain(context.Context, []float64) (*Attribution, error) {
	return nil, ErrExplainerUnavailable
}

// SelectProvider picks the attribution provider once at startup.
func SelectProvider(mode string, model Classifier, schema FeatureSchema) AttributionProvider {
	if mode == common.ExplainerNone || model == nil {
		return ImportanceOnly{}
	}

	te, err := NewTreeExplainer(model, schema)
	if err != nil {
		log.Warn().Err(err).Msg("TreeSHAP unavailable for this model, using feature importances")
		return ImportanceOnly{}
	}
	return te
}
