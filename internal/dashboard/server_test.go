package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"credit-risk/internal/common"
	"credit-risk/internal/metrics"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNames = ml.ArtifactNames{Model: common.DefaultModelFile, Features: common.DefaultFeaturesFile}

func newTestServer(t *testing.T, withArtifacts bool, mode string) *Server {
	t.Helper()

	dir := t.TempDir()
	if withArtifacts {
		require.NoError(t, ml.WriteSampleArtifacts(dir, testNames))
	}
	return newServerFor(t, dir, mode)
}

func newCorruptServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, ml.WriteCorruptArtifacts(dir, testNames))
	return newServerFor(t, dir, common.ExplainerTreeSHAP)
}

func newServerFor(t *testing.T, dir, mode string) *Server {
	t.Helper()

	arts := ml.LoadArtifacts(dir, testNames)

	registry := prometheus.NewRegistry()
	wrapper := metrics.NewWrapper(metrics.NewWithRegistry(registry))

	rc := risk.NewContext(arts, ml.SelectProvider(mode, arts.Model, arts.Features), risk.DefaultLabels)
	return NewServer(risk.NewAssessor(rc, wrapper), wrapper, Config{
		Port:          common.DefaultListenPort,
		ArtifactNames: testNames,
		Gatherer:      registry,
	})
}

func formValues(x []float64) url.Values {
	v := url.Values{}
	for i, f := range ml.DefaultFeatures {
		v.Set(f, strconv.FormatFloat(x[i], 'f', -1, 64))
	}
	return v
}

func post(t *testing.T, h http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/assess", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestForm_RendersSchemaFields(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerTreeSHAP)

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Credit Risk Prediction")
	assert.Contains(t, body, `name="AGE"`)
	assert.Contains(t, body, `min="18"`)
	assert.Contains(t, body, `max="100"`)
	assert.Contains(t, body, `value="25"`)
	assert.Contains(t, body, "Maximum Payment Delay (Months)")
	assert.Contains(t, body, "UCI Credit Card Default Dataset")
	assert.Contains(t, body, "educational purposes")
	assert.NotContains(t, body, "Model files not found")
	assert.NotContains(t, body, `id="result"`)
}

func TestSubmit_ArtifactsAbsent(t *testing.T) {
	s := newTestServer(t, false, common.ExplainerTreeSHAP)

	page := get(t, s.Handler(), "/").Body.String()
	for _, f := range ml.DefaultFeatures {
		assert.Contains(t, page, `name="`+f+`"`)
	}
	assert.Contains(t, page, "Model files not found")
	assert.NotContains(t, page, "could not be loaded")
	assert.Contains(t, page, common.DefaultModelFile)
	assert.Contains(t, page, common.DefaultFeaturesFile)

	rec := post(t, s.Handler(), formValues(ml.SampleLowRisk))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="error"`)
	assert.Contains(t, body, "The model is not loaded")
	assert.NotContains(t, body, `id="result"`)
}

func TestSubmit_ArtifactsCorrupt(t *testing.T) {
	s := newCorruptServer(t)

	page := get(t, s.Handler(), "/").Body.String()
	assert.Contains(t, page, "Model files could not be loaded")
	assert.Contains(t, page, "corrupt")
	assert.Contains(t, page, `id="load-corrupt"`)
	assert.NotContains(t, page, "Model files not found")

	rec := post(t, s.Handler(), formValues(ml.SampleLowRisk))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="error"`)
	assert.Contains(t, body, "Model files could not be loaded")
	assert.NotContains(t, body, "Model files not found")
	assert.NotContains(t, body, `id="result"`)

	api := postJSON(t, s.Handler(), `{"features":{"LIMIT_BAL":1,"AGE":30,"AVG_BILL":1,"AVG_PAY_AMT":1,"TOTAL_PAY_AMT":1,"MAX_DELAY":0,"AVG_DELAY":0}}`)
	require.Equal(t, http.StatusServiceUnavailable, api.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(api.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "could not be loaded")
	assert.Contains(t, resp.Error, ml.ErrArtifactCorrupt.Error())
}

func TestSubmit_SignedExplanation(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerTreeSHAP)

	rec := post(t, s.Handler(), formValues(ml.SampleHighRisk))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `id="result"`)
	assert.Contains(t, body, "71.09%")
	assert.Contains(t, body, `data-tier="High"`)
	assert.Contains(t, body, "alert-error")
	assert.Contains(t, body, "High risk: probability of default is high.")
	assert.Contains(t, body, "Factors Increasing Risk")
	assert.Contains(t, body, "Maximum Payment Delay (Months): +0.810")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "#dc3545")

	// Submitted values stay in the form.
	assert.Contains(t, body, `value="15000"`)
}

func TestSubmit_ImportanceFallback(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerNone)

	rec := post(t, s.Handler(), formValues(ml.SampleMidRisk))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `data-tier="Medium"`)
	assert.Contains(t, body, "alert-warning")
	assert.Contains(t, body, "Model Feature Importances")
	assert.Contains(t, body, "Maximum Payment Delay (Months): 2.000")
	assert.NotContains(t, body, "Factors Increasing Risk")
	assert.NotContains(t, body, "<svg")
}

func TestSubmit_InvalidField(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerTreeSHAP)

	values := formValues(ml.SampleLowRisk)
	values.Set("AGE", "150")

	rec := post(t, s.Handler(), values)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Age: must be at most 100")
	assert.NotContains(t, body, `id="result"`)
}

func TestAssessAPI(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerTreeSHAP)

	rec := postJSON(t, s.Handler(), `{"features":{"LIMIT_BAL":20000,"AGE":45,"AVG_BILL":1,"AVG_PAY_AMT":1,"TOTAL_PAY_AMT":1,"MAX_DELAY":2,"AVG_DELAY":1}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		RequestID  string        `json:"request_id"`
		Prediction ml.Prediction `json:"prediction"`
		Tier       string        `json:"tier"`
		Severity   string        `json:"severity"`
		Explain    struct {
			Kind     string        `json:"kind"`
			Positive []risk.Factor `json:"positive"`
			Negative []risk.Factor `json:"negative"`
		} `json:"explanation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.NotEmpty(t, got.RequestID)
	assert.InDelta(t, 0.425557, got.Prediction.Probability, 1e-5)
	assert.Equal(t, "Medium", got.Tier)
	assert.Equal(t, "warning", got.Severity)
	assert.Equal(t, "signed", got.Explain.Kind)
	require.Len(t, got.Explain.Positive, 1)
	assert.Equal(t, "LIMIT_BAL", got.Explain.Positive[0].Feature)
	require.Len(t, got.Explain.Negative, 2)
	assert.Equal(t, "AGE", got.Explain.Negative[0].Feature)
}

func TestAssessAPI_Errors(t *testing.T) {
	loaded := newTestServer(t, true, common.ExplainerTreeSHAP)
	absent := newTestServer(t, false, common.ExplainerTreeSHAP)
	valid := `{"features":{"LIMIT_BAL":20000,"AGE":45,"AVG_BILL":1,"AVG_PAY_AMT":1,"TOTAL_PAY_AMT":1,"MAX_DELAY":2,"AVG_DELAY":1}}`

	testCases := []struct {
		name   string
		server *Server
		body   string
		status int
		field  string
	}{
		{"model unavailable", absent, valid, http.StatusServiceUnavailable, ""},
		{"malformed body", loaded, `{"features":`, http.StatusBadRequest, ""},
		{"unknown top-level key", loaded, `{"values":{}}`, http.StatusBadRequest, ""},
		{"out of range", loaded, strings.Replace(valid, `"AGE":45`, `"AGE":12`, 1), http.StatusUnprocessableEntity, "AGE"},
		{"missing feature", loaded, strings.Replace(valid, `"AGE":45,`, ``, 1), http.StatusUnprocessableEntity, "AGE"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, tc.server.Handler(), tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tc.field != "" {
				require.NotNil(t, resp.Field)
				assert.Equal(t, tc.field, resp.Field.Feature)
			}
		})
	}
}

func TestSchemaAPI(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerNone)

	rec := get(t, s.Handler(), "/api/schema")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SchemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ModelLoaded)
	assert.Equal(t, common.ExplainerNone, resp.Explainer)
	require.Len(t, resp.Fields, len(ml.DefaultFeatures))
	assert.Equal(t, "AGE", resp.Fields[1].Feature)
	require.NotNil(t, resp.Fields[1].Max)
	assert.Equal(t, 100.0, *resp.Fields[1].Max)
}

func TestSchemaAPI_Corrupt(t *testing.T) {
	s := newCorruptServer(t)

	var schema SchemaResponse
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/api/schema").Body.Bytes(), &schema))
	assert.False(t, schema.ModelLoaded)
	assert.True(t, schema.ModelCorrupt)
	assert.True(t, schema.LoadState().Corrupt)
	assert.NotEmpty(t, schema.LoadError)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/health").Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
	assert.True(t, health.ModelCorrupt)
	assert.NotNil(t, health.ModelTime)
}

func TestHealth(t *testing.T) {
	testCases := []struct {
		name     string
		loaded   bool
		status   string
		loadErrs bool
	}{
		{"loaded", true, "ok", false},
		{"degraded", false, "degraded", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, tc.loaded, common.ExplainerTreeSHAP)

			rec := get(t, s.Handler(), "/health")
			require.Equal(t, http.StatusOK, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.loaded, resp.ModelLoaded)
			assert.Equal(t, tc.status, resp.Status)
			assert.Equal(t, tc.loadErrs, resp.LoadError != "")
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerTreeSHAP)

	require.Equal(t, http.StatusOK, post(t, s.Handler(), formValues(ml.SampleLowRisk)).Code)

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "credit_assessments_total 1")
	assert.Contains(t, body, `credit_risk_tier_total{tier="Low"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, true, common.ExplainerTreeSHAP)

	rec := get(t, s.Handler(), "/api/assess")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
