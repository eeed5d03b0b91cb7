// Package webapi exposes the Quality Wheel engine over a JSON HTTP API.
package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/practice"
	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/internal/validation"
	"github.com/aigents/quality-wheel/internal/wheel"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	evaluator *wheel.Evaluator
	store     ResultStore
	logger    *slog.Logger

	// onRubricChange runs after every successful rubric mutation.
	onRubricChange func(*rubric.Config) error
}

// HandlerOption configures Handlers.
type HandlerOption func(*Handlers)

// WithLogger sets the handlers' logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handlers) {
		h.logger = l
	}
}

// WithRubricHook registers fn to run after each successful rubric change,
// typically to persist the rubric file. A hook error is logged and reported
// as a 500, but the in-memory change stands.
func WithRubricHook(fn func(*rubric.Config) error) HandlerOption {
	return func(h *Handlers) {
		h.onRubricChange = fn
	}
}

// NewHandlers creates Handlers around evaluator. store may be nil, in which
// case results are not recorded and the results routes return empty data.
func NewHandlers(evaluator *wheel.Evaluator, store ResultStore, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		evaluator: evaluator,
		store:     store,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		RubricVersion: h.evaluator.Rubric().Version(),
	})
}

// HandleRubric returns the current rubric snapshot.
func (h *Handlers) HandleRubric(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.evaluator.Rubric().Snapshot())
}

// HandleAdjustThreshold applies a partial update to one sub-criterion.
func (h *Handlers) HandleAdjustThreshold(w http.ResponseWriter, r *http.Request) {
	criterion := chi.URLParam(r, "criterion")
	sub := chi.URLParam(r, "subCriterion")

	var update rubric.ThresholdUpdate
	if err := decodeStrict(w, r, &update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.evaluator.Rubric()
	if err := cfg.AdjustThreshold(criterion, sub, update); err != nil {
		h.writeEngineError(w, err)
		return
	}
	if !h.afterRubricChange(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, cfg.Snapshot())
}

// HandleSetWeights replaces all sub-criterion weights of one criterion.
func (h *Handlers) HandleSetWeights(w http.ResponseWriter, r *http.Request) {
	criterion := chi.URLParam(r, "criterion")

	var weights map[string]float64
	if err := decodeStrict(w, r, &weights); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.evaluator.Rubric()
	if err := cfg.SetWeights(criterion, weights); err != nil {
		h.writeEngineError(w, err)
		return
	}
	if !h.afterRubricChange(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, cfg.Snapshot())
}

// HandleEvaluate scores the practice in the request body. The result is
// recorded in the store unless the query has save=false.
func (h *Handlers) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("reading body: %v", err))
		return
	}
	if errs := validation.ValidatePracticeBytes(body); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "invalid practice: "+strings.Join(errs, "; "))
		return
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	in, err := practice.FromMap(raw)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	result, err := h.evaluator.EvaluatePractice(r.Context(), in)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if h.store != nil && r.URL.Query().Get("save") != "false" {
		if err := h.store.Save(result); err != nil {
			h.logger.Warn("Failed to save result", "practice", result.PracticeID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleResults lists stored results, with optional sort/order query params.
func (h *Handlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, []ResultSummary{})
		return
	}
	results, err := h.store.List(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleResultDetail returns one stored result.
func (h *Handlers) HandleResultDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.store == nil {
		writeError(w, http.StatusNotFound, ErrResultNotFound.Error())
		return
	}

	result, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, ErrResultNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleSummary returns aggregate KPI metrics across stored results.
func (h *Handlers) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, SummaryResponse{})
		return
	}
	summary, err := h.store.Summary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) afterRubricChange(w http.ResponseWriter, cfg *rubric.Config) bool {
	if h.onRubricChange == nil {
		return true
	}
	if err := h.onRubricChange(cfg); err != nil {
		h.logger.Error("Rubric change hook failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return false
	}
	return true
}

// writeEngineError maps engine error kinds to status codes: invalid input is
// 400, a configuration error is 422, anything else 500.
func (h *Handlers) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrConfiguration):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeStrict(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
