// Package ml provides the classification side of the credit-risk service.
// It loads the serialized tree ensemble and its feature schema, evaluates
// default probabilities, and produces per-feature attributions for a single
// prediction.
//
// Attribution is optional: an AttributionProvider is chosen once at startup
// and either computes signed TreeSHAP contributions or reports that only the
// model's global feature importances are available.
package ml

// FeatureSchema is the ordered list of input identifiers the model expects.
// The same order is used for input vectors and attribution output.
type FeatureSchema []string

// DefaultFeatures is used to render the input form when the schema artifact
// cannot be loaded.
var DefaultFeatures = FeatureSchema{
	"LIMIT_BAL",
	"AGE",
	"AVG_BILL",
	"AVG_PAY_AMT",
	"TOTAL_PAY_AMT",
	"MAX_DELAY",
	"AVG_DELAY",
}

// Index returns the position of name in the schema, or -1.
func (s FeatureSchema) Index(name string) int {
	for i, f := range s {
		if f == name {
			return i
		}
	}
	return -1
}

// Prediction is the classifier output for one input vector.
type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}

// Classifier is a trained binary classifier over a fixed-length vector.
type Classifier interface {
	// NumFeatures is the input vector length the model was trained on.
	NumFeatures() int

	// Predict returns the class label and the positive-class probability.
	Predict(x []float64) (Prediction, error)

	// FeatureImportances returns one non-negative global score per feature,
	// in schema order.
	FeatureImportances() []float64
}
