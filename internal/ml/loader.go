package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// ArtifactNames are the file names of the two artifacts inside the artifact
// directory.
type ArtifactNames struct {
	Model    string
	Features string
}

// Artifacts is the result of loading the model and its feature schema.
// When Loaded is false, Model is nil, Features is DefaultFeatures and Err
// wraps ErrArtifactMissing or ErrArtifactCorrupt.
type Artifacts struct {
	Model        Classifier
	Features     FeatureSchema
	Loaded       bool
	Err          error
	ModelPath    string
	FeaturesPath string
	ModelCreated time.Time
}

// LoadArtifacts resolves both artifacts in dir and decodes them. It never
// returns nil; failures are reported through Loaded and Err.
func LoadArtifacts(dir string, names ArtifactNames) *Artifacts {
	a := &Artifacts{
		ModelPath:    filepath.Join(dir, names.Model),
		FeaturesPath: filepath.Join(dir, names.Features),
	}

	model, features, err := a.load()
	if err != nil {
		log.Warn().
			Err(err).
			Str("model_path", a.ModelPath).
			Str("features_path", a.FeaturesPath).
			Msg("model artifacts unavailable, prediction disabled")
		a.Features = append(FeatureSchema(nil), DefaultFeatures...)
		a.Err = err
		return a
	}

	a.Model = model
	a.Features = features
	a.Loaded = true

	log.Info().
		Str("model_path", a.ModelPath).
		Int("features", len(features)).
		Int("trees", model.NumTrees()).
		Bool("contributions", model.SupportsContributions()).
		Msg("model artifacts loaded")

	return a
}

func (a *Artifacts) load() (*Ensemble, FeatureSchema, error) {
	modelInfo, err := statArtifact(a.ModelPath)
	if err != nil {
		return nil, nil, err
	}
	if _, err := statArtifact(a.FeaturesPath); err != nil {
		return nil, nil, err
	}
	a.ModelCreated = modelInfo.ModTime()

	features, err := readFeatures(a.FeaturesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, a.FeaturesPath, err)
	}

	data, err := os.ReadFile(a.ModelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, a.ModelPath, err)
	}
	model, err := DecodeEnsemble(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, a.ModelPath, err)
	}

	if model.NumFeatures() != len(features) {
		return nil, nil, fmt.Errorf("%w: model expects %d features, schema lists %d",
			ErrArtifactCorrupt, model.NumFeatures(), len(features))
	}
	if err := checkFeatureOrder(model.FeatureNames(), features); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}

	return model, features, nil
}

// checkFeatureOrder compares the names stored in the model dump with the
// schema position by position. Dumps without names, or with the
// Column_<i> names LightGBM generates for unnamed training data, are
// accepted as is.
func checkFeatureOrder(modelNames []string, schema FeatureSchema) error {
	if len(modelNames) == 0 || generatedNames(modelNames) {
		return nil
	}
	if len(modelNames) != len(schema) {
		return fmt.Errorf("model lists %d feature names, schema lists %d", len(modelNames), len(schema))
	}
	for i, name := range modelNames {
		if name != schema[i] {
			return fmt.Errorf("schema order does not match model feature_names: position %d is %q in the schema, %q in the model",
				i, schema[i], name)
		}
	}
	return nil
}

func generatedNames(names []string) bool {
	for i, n := range names {
		if n != fmt.Sprintf("Column_%d", i) {
			return false
		}
	}
	return true
}

func statArtifact(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrArtifactCorrupt, path)
	}
	return info, nil
}

// readFeatures decodes a JSON array of unique, non-empty feature names.
func readFeatures(path string) (FeatureSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("feature list is empty")
	}

	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("feature %d has an empty name", i)
		}
		if seen[n] {
			return nil, fmt.Errorf("duplicate feature %q", n)
		}
		seen[n] = true
	}

	return FeatureSchema(names), nil
}
