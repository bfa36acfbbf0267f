package form

import (
	"errors"
	"net/url"
	"testing"

	"credit-risk/internal/ml"
	"credit-risk/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecFor_Policy(t *testing.T) {
	testCases := []struct {
		feature string
		integer bool
		min     string
		max     string
		def     float64
		step    string
	}{
		{"AGE", true, "18", "100", 25, "1"},
		{"LIMIT_BAL", false, "0", "", 10000, "1000"},
		{"AVG_BILL", false, "0", "", 10000, "1000"},
		{"BILL_AMT1", false, "0", "", 10000, "1000"},
		{"AVG_PAY_AMT", false, "0", "", 10000, "1000"},
		{"TOTAL_PAY_AMT", false, "0", "", 10000, "1000"},
		{"MAX_DELAY", true, "0", "12", 0, "1"},
		{"AVG_DELAY", true, "0", "12", 0, "1"},
		{"PAY_0", false, "", "", 0, "any"},
		{"EDUCATION", false, "", "", 0, "any"},
	}

	for _, tc := range testCases {
		t.Run(tc.feature, func(t *testing.T) {
			spec := SpecFor(tc.feature, risk.DefaultLabels)
			assert.Equal(t, tc.feature, spec.Feature)
			assert.Equal(t, tc.integer, spec.Integer)
			assert.Equal(t, tc.min, spec.MinAttr())
			assert.Equal(t, tc.max, spec.MaxAttr())
			assert.Equal(t, tc.def, spec.Default)
			assert.Equal(t, tc.step, spec.StepAttr())
		})
	}
}

func TestSpecFor_PolicyPrecedence(t *testing.T) {
	// LIMIT wins over DELAY because it is checked first.
	spec := SpecFor("LIMIT_DELAY", nil)
	assert.False(t, spec.Integer)
	assert.Equal(t, 10000.0, spec.Default)
}

func TestSpecFor_Labels(t *testing.T) {
	assert.Equal(t, "Age", SpecFor("AGE", risk.DefaultLabels).Label)
	assert.Equal(t, "PAY_0", SpecFor("PAY_0", risk.DefaultLabels).Label)
}

func TestBuild_SchemaOrder(t *testing.T) {
	specs := Build(ml.DefaultFeatures, risk.DefaultLabels)
	require.Len(t, specs, len(ml.DefaultFeatures))
	for i, s := range specs {
		assert.Equal(t, ml.DefaultFeatures[i], s.Feature)
	}
	assert.Equal(t, Vector{10000, 25, 10000, 10000, 10000, 0, 0}, Defaults(specs))
}

func validValues() url.Values {
	return url.Values{
		"LIMIT_BAL":     {"200000"},
		"AGE":           {"45"},
		"AVG_BILL":      {"5000"},
		"AVG_PAY_AMT":   {"3000"},
		"TOTAL_PAY_AMT": {"18000"},
		"MAX_DELAY":     {"0"},
		"AVG_DELAY":     {"0"},
	}
}

func TestParse_Valid(t *testing.T) {
	specs := Build(ml.DefaultFeatures, risk.DefaultLabels)

	vec, err := Parse(specs, validValues())
	require.NoError(t, err)
	assert.Equal(t, Vector{200000, 45, 5000, 3000, 18000, 0, 0}, vec)
}

func TestParse_Rejects(t *testing.T) {
	specs := Build(ml.DefaultFeatures, risk.DefaultLabels)

	testCases := []struct {
		name    string
		feature string
		value   string
		reason  string
	}{
		{"age below range", "AGE", "17", "must be at least 18"},
		{"age above range", "AGE", "101", "must be at most 100"},
		{"age fractional", "AGE", "30.5", "must be a whole number"},
		{"negative limit", "LIMIT_BAL", "-1", "must be at least 0"},
		{"delay above range", "MAX_DELAY", "13", "must be at most 12"},
		{"not a number", "AVG_BILL", "abc", `"abc" is not a number`},
		{"missing", "TOTAL_PAY_AMT", "", "a value is required"},
		{"infinite", "AVG_PAY_AMT", "Inf", "must be a finite number"},
		{"nan", "AVG_PAY_AMT", "NaN", "must be a finite number"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values := validValues()
			values.Set(tc.feature, tc.value)

			vec, err := Parse(specs, values)
			assert.Nil(t, vec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.feature, fe.Feature)
			assert.Equal(t, tc.reason, fe.Reason)
		})
	}
}

func TestParse_BoundsInclusive(t *testing.T) {
	specs := Build(ml.DefaultFeatures, risk.DefaultLabels)
	values := validValues()
	values.Set("AGE", "18")
	values.Set("MAX_DELAY", "12")
	values.Set("LIMIT_BAL", "0")

	vec, err := Parse(specs, values)
	require.NoError(t, err)
	assert.Equal(t, 18.0, vec[1])
	assert.Equal(t, 12.0, vec[5])
}

func TestParse_UnboundedField(t *testing.T) {
	specs := Build(ml.FeatureSchema{"PAY_0"}, nil)
	vec, err := Parse(specs, url.Values{"PAY_0": {"-2.75"}})
	require.NoError(t, err)
	assert.Equal(t, Vector{-2.75}, vec)
}

func TestFromMap(t *testing.T) {
	specs := Build(ml.DefaultFeatures, risk.DefaultLabels)
	good := map[string]float64{
		"LIMIT_BAL": 20000, "AGE": 25, "AVG_BILL": 15000, "AVG_PAY_AMT": 500,
		"TOTAL_PAY_AMT": 3000, "MAX_DELAY": 5, "AVG_DELAY": 2.5,
	}

	t.Run("valid", func(t *testing.T) {
		// AVG_DELAY is an integer field, so 2.5 is rejected.
		m := copyMap(good)
		m["AVG_DELAY"] = 2
		vec, err := FromMap(specs, m)
		require.NoError(t, err)
		assert.Equal(t, Vector{20000, 25, 15000, 500, 3000, 5, 2}, vec)
	})

	t.Run("fractional integer field", func(t *testing.T) {
		_, err := FromMap(specs, good)
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "AVG_DELAY", fe.Feature)
	})

	t.Run("missing feature", func(t *testing.T) {
		m := copyMap(good)
		m["AVG_DELAY"] = 2
		delete(m, "AGE")
		_, err := FromMap(specs, m)
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "AGE", fe.Feature)
	})

	t.Run("unknown feature", func(t *testing.T) {
		m := copyMap(good)
		m["AVG_DELAY"] = 2
		m["PAY_0"] = 1
		_, err := FromMap(specs, m)
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "PAY_0", fe.Feature)
		assert.Equal(t, "unknown feature", fe.Reason)
	})
}

func TestValues_RoundTrip(t *testing.T) {
	specs := Build(ml.DefaultFeatures, risk.DefaultLabels)
	vec := Vector{200000, 45, 5000.5, 3000, 18000, 0, 0}

	back, err := Parse(specs, Values(specs, vec))
	require.NoError(t, err)
	assert.Equal(t, vec, back)
}

func TestFieldSpec_Describe(t *testing.T) {
	assert.Equal(t, "whole number, 18 to 100", SpecFor("AGE", nil).Describe())
	assert.Equal(t, "number, at least 0", SpecFor("LIMIT_BAL", nil).Describe())
	assert.Equal(t, "number", SpecFor("PAY_0", nil).Describe())
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
