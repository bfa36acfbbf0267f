package ml

import "errors"

var (
	// ErrArtifactMissing means one or both artifact files do not exist.
	ErrArtifactMissing = errors.New("model artifact missing")

	// ErrArtifactCorrupt means an artifact exists but could not be decoded.
	ErrArtifactCorrupt = errors.New("model artifact corrupt")

	// ErrExplainerUnavailable means no signed attribution can be computed;
	// callers fall back to global importances.
	ErrExplainerUnavailable = errors.New("attribution explainer unavailable")

	// ErrExplainerFailure means the explainer ran and failed for this input.
	ErrExplainerFailure = errors.New("attribution failed")

	// ErrPrediction means the classifier rejected the input vector.
	ErrPrediction = errors.New("prediction failed")
)
