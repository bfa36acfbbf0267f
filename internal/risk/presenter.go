package risk

import (
	"sort"

	"credit-risk/internal/ml"
)

// ExplanationKind tells the renderer which part of an Explanation is filled.
type ExplanationKind string

const (
	// KindSigned carries Positive, Negative and Bars.
	KindSigned ExplanationKind = "signed"
	// KindImportance carries Importance only; values have no sign.
	KindImportance ExplanationKind = "importance"
	// KindNone carries only Message.
	KindNone ExplanationKind = "none"
)

const (
	importanceNotice = "Signed attribution is unavailable. Showing the model's global feature importances instead."
	noneNotice       = "The explanation could not be computed. The prediction is shown without it."
)

// Factor is one feature in a rendered explanation.
type Factor struct {
	Feature string  `json:"feature"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
}

// Explanation is the display-ready form of an attribution.
type Explanation struct {
	Kind       ExplanationKind `json:"kind"`
	Positive   []Factor        `json:"positive,omitempty"`
	Negative   []Factor        `json:"negative,omitempty"`
	Importance []Factor        `json:"importance,omitempty"`
	Bars       []Factor        `json:"bars,omitempty"`
	BaseValue  float64         `json:"base_value,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// Present builds an Explanation. With a non-nil attr, features that raised
// the risk are listed largest first and features that lowered it most
// negative first; zero contributions are left out of both lists. Without
// attr, every feature in importance is listed by descending score. Ties keep
// input order in all lists.
func Present(attr *ml.Attribution, importance []ml.Importance, labels Labels) Explanation {
	if attr != nil {
		return presentSigned(attr, labels)
	}
	if importance != nil {
		return presentImportance(importance, labels)
	}
	return Unexplained(noneNotice)
}

// Unexplained is the explanation shown when the explainer failed.
func Unexplained(message string) Explanation {
	return Explanation{Kind: KindNone, Message: message}
}

func presentSigned(attr *ml.Attribution, labels Labels) Explanation {
	ex := Explanation{
		Kind:      KindSigned,
		BaseValue: attr.BaseValue,
		Positive:  []Factor{},
		Negative:  []Factor{},
		Bars:      make([]Factor, 0, len(attr.Contributions)),
	}

	for _, c := range attr.Contributions {
		f := Factor{Feature: c.Feature, Label: labels.For(c.Feature), Value: c.Value}
		ex.Bars = append(ex.Bars, f)
		switch {
		case c.Value > 0:
			ex.Positive = append(ex.Positive, f)
		case c.Value < 0:
			ex.Negative = append(ex.Negative, f)
		}
	}

	sort.SliceStable(ex.Positive, func(i, j int) bool {
		return ex.Positive[i].Value > ex.Positive[j].Value
	})
	sort.SliceStable(ex.Negative, func(i, j int) bool {
		return ex.Negative[i].Value < ex.Negative[j].Value
	})

	return ex
}

func presentImportance(importance []ml.Importance, labels Labels) Explanation {
	ex := Explanation{
		Kind:       KindImportance,
		Importance: make([]Factor, len(importance)),
		Message:    importanceNotice,
	}
	for i, imp := range importance {
		ex.Importance[i] = Factor{Feature: imp.Feature, Label: labels.For(imp.Feature), Value: imp.Score}
	}
	sort.SliceStable(ex.Importance, func(i, j int) bool {
		return ex.Importance[i].Value > ex.Importance[j].Value
	})
	return ex
}
