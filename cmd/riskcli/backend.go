package main

import (
	"context"

	"credit-risk/internal/cfg"
	"credit-risk/internal/client"
	"credit-risk/internal/form"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"
)

// backend scores a vector either in-process or on a server.
type backend interface {
	Fields(ctx context.Context) (specs []form.FieldSpec, state risk.LoadState, err error)
	Assess(ctx context.Context, specs []form.FieldSpec, vec form.Vector) (*risk.Assessment, error)
}

func newBackend(c cfg.Settings, remote bool) backend {
	if remote {
		return &remoteBackend{client: client.New(c.ServerURL, c.ClientTimeout)}
	}

	names := ml.ArtifactNames{Model: c.ModelFile, Features: c.FeaturesFile}
	arts := ml.LoadArtifacts(c.ArtifactDir, names)
	provider := ml.SelectProvider(c.Explainer, arts.Model, arts.Features)
	return &localBackend{assessor: risk.NewAssessor(risk.NewContext(arts, provider, risk.DefaultLabels), nil)}
}

type localBackend struct {
	assessor *risk.Assessor
}

func (b *localBackend) Fields(context.Context) ([]form.FieldSpec, risk.LoadState, error) {
	rc := b.assessor.Context()
	return form.Build(rc.Schema(), rc.Labels()), rc.LoadState(), nil
}

func (b *localBackend) Assess(ctx context.Context, _ []form.FieldSpec, vec form.Vector) (*risk.Assessment, error) {
	return b.assessor.Assess(ctx, vec)
}

type remoteBackend struct {
	client *client.Client
}

func (b *remoteBackend) Fields(ctx context.Context) ([]form.FieldSpec, risk.LoadState, error) {
	schema, err := b.client.Schema(ctx)
	if err != nil {
		return nil, risk.LoadState{}, err
	}
	return schema.Fields, schema.LoadState(), nil
}

func (b *remoteBackend) Assess(ctx context.Context, specs []form.FieldSpec, vec form.Vector) (*risk.Assessment, error) {
	features := make(map[string]float64, len(specs))
	for i, s := range specs {
		features[s.Feature] = vec[i]
	}
	return b.client.Assess(ctx, features)
}
