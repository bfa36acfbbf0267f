// Package dashboard serves the credit-risk assessment form over HTTP.
// It renders the customer form and the result page, and exposes the same
// pipeline as a JSON API alongside health and Prometheus endpoints.
//
// All handlers share one immutable risk.Context, so requests are served
// concurrently without locking.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"credit-risk/internal/form"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// InputMetrics records rejected submissions.
type InputMetrics interface {
	InvalidInputInc()
}

type noopInputMetrics struct{}

func (noopInputMetrics) InvalidInputInc() {}

// Config holds what the server needs besides the assessor.
type Config struct {
	Port          int
	ArtifactNames ml.ArtifactNames
	Gatherer      prometheus.Gatherer // nil serves the default registry
}

// Server is the HTTP front-end.
type Server struct {
	assessor *risk.Assessor
	specs    []form.FieldSpec
	names    ml.ArtifactNames
	metrics  InputMetrics
	page     *template.Template
	router   *mux.Router
	server   *http.Server

	isRunning bool
	mu        sync.Mutex
}

// NewServer wires routes for the given assessor. Field specs are derived
// once from the context schema.
func NewServer(assessor *risk.Assessor, metrics InputMetrics, cfg Config) *Server {
	if metrics == nil {
		metrics = noopInputMetrics{}
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	rc := assessor.Context()
	s := &Server{
		assessor: assessor,
		specs:    form.Build(rc.Schema(), rc.Labels()),
		names:    cfg.ArtifactNames,
		metrics:  metrics,
		page:     template.Must(template.New("page").Funcs(pageFuncs).Parse(pageTemplate)),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleForm).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/assess", s.handleAssessAPI).Methods(http.MethodPost)
	r.HandleFunc("/api/schema", s.handleSchemaAPI).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router = r

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background until Stop is called.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("server is already running")
	}

	go func() {
		log.Info().
			Str("address", s.server.Addr).
			Msg("starting credit risk server")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("credit risk server failed")
		}
	}()

	s.isRunning = true
	return nil
}

// Stop shuts the server down, waiting up to five seconds for requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shut down credit risk server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("credit risk server stopped")
	return nil
}

// handleForm renders the empty form with default values.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.newPage(form.Values(s.specs, form.Defaults(s.specs))))
}

// handleSubmit validates the posted form, runs the assessment and renders
// the result below the refilled form.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, s.newPage(nil).withError("The form could not be read: "+err.Error()))
		return
	}
	page := s.newPage(r.PostForm)

	if !page.Loaded {
		s.render(w, http.StatusOK, page.withError(unavailableMessage(page.Load)))
		return
	}

	vec, err := form.Parse(s.specs, r.PostForm)
	if err != nil {
		s.metrics.InvalidInputInc()
		s.render(w, http.StatusOK, page.withError(err.Error()))
		return
	}

	result, err := s.assessor.Assess(r.Context(), vec)
	if err != nil {
		s.render(w, http.StatusOK, page.withError(submitErrorMessage(err)))
		return
	}

	page.Result = newResultView(result)
	s.render(w, http.StatusOK, page)
}

func submitErrorMessage(err error) string {
	switch {
	case errors.Is(err, ml.ErrArtifactCorrupt):
		return unavailableMessage(risk.LoadState{Corrupt: true, Error: err.Error()})
	case errors.Is(err, risk.ErrModelUnavailable):
		return unavailableMessage(risk.LoadState{})
	case errors.Is(err, ml.ErrPrediction):
		return "An error occurred while making the prediction: " + err.Error()
	default:
		return "The assessment could not be completed: " + err.Error()
	}
}

func unavailableMessage(state risk.LoadState) string {
	if state.Corrupt {
		return state.Notice() + ". No prediction can be made."
	}
	return "The model is not loaded, so no prediction can be made."
}

func (s *Server) render(w http.ResponseWriter, status int, page *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, page); err != nil {
		log.Error().Err(err).Msg("failed to render page")
	}
}

type assessRequest struct {
	Features map[string]float64 `json:"features"`
}

// ErrorResponse is the body of every non-200 API response.
type ErrorResponse struct {
	Error string           `json:"error"`
	Field *form.FieldError `json:"field,omitempty"`
}

// handleAssessAPI is the JSON form of handleSubmit.
func (s *Server) handleAssessAPI(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if state := s.assessor.Context().LoadState(); !state.Loaded {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: state.Err().Error()})
		return
	}

	vec, err := form.FromMap(s.specs, req.Features)
	if err != nil {
		s.metrics.InvalidInputInc()
		resp := ErrorResponse{Error: err.Error()}
		var fe *form.FieldError
		if errors.As(err, &fe) {
			resp.Field = fe
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	result, err := s.assessor.Assess(r.Context(), vec)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, risk.ErrModelUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ml.ErrPrediction):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// SchemaResponse describes the input fields.
type SchemaResponse struct {
	Fields       []form.FieldSpec `json:"fields"`
	ModelLoaded  bool             `json:"model_loaded"`
	ModelCorrupt bool             `json:"model_corrupt,omitempty"`
	LoadError    string           `json:"load_error,omitempty"`
	Explainer    string           `json:"explainer"`
}

// LoadState rebuilds the server's load classification.
func (r *SchemaResponse) LoadState() risk.LoadState {
	return risk.LoadState{Loaded: r.ModelLoaded, Corrupt: r.ModelCorrupt, Error: r.LoadError}
}

func (s *Server) handleSchemaAPI(w http.ResponseWriter, r *http.Request) {
	rc := s.assessor.Context()
	state := rc.LoadState()
	writeJSON(w, http.StatusOK, SchemaResponse{
		Fields:       s.specs,
		ModelLoaded:  state.Loaded,
		ModelCorrupt: state.Corrupt,
		LoadError:    state.Error,
		Explainer:    rc.ProviderName(),
	})
}

// HealthResponse is the /health payload. The endpoint reports 200 in
// degraded mode too; model_loaded tells the two apart.
type HealthResponse struct {
	Status       string     `json:"status"`
	ModelLoaded  bool       `json:"model_loaded"`
	ModelCorrupt bool       `json:"model_corrupt,omitempty"`
	ModelTime    *time.Time `json:"model_time,omitempty"`
	Explainer    string     `json:"explainer"`
	LoadError    string     `json:"load_error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rc := s.assessor.Context()
	state := rc.LoadState()
	resp := HealthResponse{
		Status:       "ok",
		ModelLoaded:  state.Loaded,
		ModelCorrupt: state.Corrupt,
		Explainer:    rc.ProviderName(),
		LoadError:    state.Error,
	}
	if t := rc.ModelTime(); !t.IsZero() {
		resp.ModelTime = &t
	}
	if !state.Loaded {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
