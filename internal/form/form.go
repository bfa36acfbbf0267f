// Package form describes the input fields for a feature schema and turns
// submitted values into an input vector. The same field specs drive the HTML
// form, the terminal form and server-side validation.
package form

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"credit-risk/internal/ml"
	"credit-risk/internal/risk"
)

// ErrInvalidInput is wrapped by every FieldError.
var ErrInvalidInput = errors.New("invalid input")

// Vector is an input vector in schema order.
type Vector []float64

// FieldSpec is the numeric input widget for one feature.
type FieldSpec struct {
	Feature string   `json:"feature"`
	Label   string   `json:"label"`
	Integer bool     `json:"integer"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Default float64  `json:"default"`
	Step    float64  `json:"step,omitempty"`
}

// FieldError reports the first invalid field of a submission.
type FieldError struct {
	Feature string `json:"feature"`
	Label   string `json:"label"`
	Reason  string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

func bound(v float64) *float64 {
	return &v
}

// SpecFor applies the field policy to one feature. Rules are checked in
// order and the first match wins.
func SpecFor(feature string, labels risk.Labels) FieldSpec {
	spec := FieldSpec{Feature: feature, Label: labels.For(feature)}

	switch {
	case feature == "AGE":
		spec.Integer = true
		spec.Min, spec.Max = bound(18), bound(100)
		spec.Default = 25
		spec.Step = 1
	case strings.Contains(feature, "LIMIT"),
		strings.Contains(feature, "BILL"),
		strings.Contains(feature, "PAY_AMT"):
		spec.Min = bound(0)
		spec.Default = 10000
		spec.Step = 1000
	case strings.Contains(feature, "DELAY"):
		spec.Integer = true
		spec.Min, spec.Max = bound(0), bound(12)
		spec.Default = 0
		spec.Step = 1
	}

	return spec
}

// Build returns one spec per schema feature, in schema order.
func Build(schema ml.FeatureSchema, labels risk.Labels) []FieldSpec {
	specs := make([]FieldSpec, len(schema))
	for i, f := range schema {
		specs[i] = SpecFor(f, labels)
	}
	return specs
}

// Defaults is the vector of every field's default value.
func Defaults(specs []FieldSpec) Vector {
	v := make(Vector, len(specs))
	for i, s := range specs {
		v[i] = s.Default
	}
	return v
}

// Check validates an already numeric value against the field's bounds.
func (f FieldSpec) Check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.fail("must be a finite number")
	}
	if f.Integer && v != math.Trunc(v) {
		return f.fail("must be a whole number")
	}
	if f.Min != nil && v < *f.Min {
		return f.fail(fmt.Sprintf("must be at least %s", formatNumber(*f.Min)))
	}
	if f.Max != nil && v > *f.Max {
		return f.fail(fmt.Sprintf("must be at most %s", formatNumber(*f.Max)))
	}
	return nil
}

// ParseValue parses and validates the text form of a field value.
func (f FieldSpec) ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, f.fail("a value is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, f.fail(fmt.Sprintf("%q is not a number", s))
	}
	if err := f.Check(v); err != nil {
		return 0, err
	}
	return v, nil
}

// Validate is ParseValue without the result, for widget validators.
func (f FieldSpec) Validate(s string) error {
	_, err := f.ParseValue(s)
	return err
}

func (f FieldSpec) fail(reason string) *FieldError {
	return &FieldError{Feature: f.Feature, Label: f.Label, Reason: reason}
}

// Parse builds a vector from form values keyed by feature identifier. No
// vector is returned unless every field is valid.
func Parse(specs []FieldSpec, values url.Values) (Vector, error) {
	vec := make(Vector, len(specs))
	for i, spec := range specs {
		v, err := spec.ParseValue(values.Get(spec.Feature))
		if err != nil {
			return nil, err
		}
		vec[i] = v
	}
	return vec, nil
}

// FromMap builds a vector from a feature -> value map, as received by the
// JSON API. Every field must be present and unknown keys are rejected.
func FromMap(specs []FieldSpec, values map[string]float64) (Vector, error) {
	known := make(map[string]struct{}, len(specs))
	vec := make(Vector, len(specs))

	for i, spec := range specs {
		known[spec.Feature] = struct{}{}
		v, ok := values[spec.Feature]
		if !ok {
			return nil, spec.fail("a value is required")
		}
		if err := spec.Check(v); err != nil {
			return nil, err
		}
		vec[i] = v
	}

	for name := range values {
		if _, ok := known[name]; !ok {
			return nil, &FieldError{Feature: name, Label: name, Reason: "unknown feature"}
		}
	}
	return vec, nil
}

// Values renders a vector back into form values, for re-filling a submitted
// form.
func Values(specs []FieldSpec, vec Vector) url.Values {
	out := make(url.Values, len(specs))
	for i, spec := range specs {
		if i < len(vec) {
			out.Set(spec.Feature, formatNumber(vec[i]))
		}
	}
	return out
}

// MinAttr, MaxAttr, StepAttr and DefaultAttr format the field for HTML
// input attributes. Empty means no attribute.
func (f FieldSpec) MinAttr() string {
	if f.Min == nil {
		return ""
	}
	return formatNumber(*f.Min)
}

func (f FieldSpec) MaxAttr() string {
	if f.Max == nil {
		return ""
	}
	return formatNumber(*f.Max)
}

func (f FieldSpec) StepAttr() string {
	if f.Step == 0 {
		return "any"
	}
	return formatNumber(f.Step)
}

func (f FieldSpec) DefaultAttr() string {
	return formatNumber(f.Default)
}

// Describe summarizes the field's type and bounds, for help text.
func (f FieldSpec) Describe() string {
	kind := "number"
	if f.Integer {
		kind = "whole number"
	}
	switch {
	case f.Min != nil && f.Max != nil:
		return fmt.Sprintf("%s, %s to %s", kind, formatNumber(*f.Min), formatNumber(*f.Max))
	case f.Min != nil:
		return fmt.Sprintf("%s, at least %s", kind, formatNumber(*f.Min))
	case f.Max != nil:
		return fmt.Sprintf("%s, at most %s", kind, formatNumber(*f.Max))
	default:
		return kind
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
