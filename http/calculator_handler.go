package http

import (
	"errors"
	"io"
	"maps"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"loan-calculator/control"
	"loan-calculator/domain"
	"loan-calculator/metrics"
	"loan-calculator/repository"
)

// CalculatorHandler exposes live calculator sessions. Edits return
// immediately with the pending snapshot; the recompute lands after the
// debounce and is visible on the next GET.
type CalculatorHandler struct {
	registry *repository.CalculatorRegistry
	engine   control.Engine
	defaults domain.CalculatorConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewCalculatorHandler(
	registry *repository.CalculatorRegistry,
	engine control.Engine,
	defaults domain.CalculatorConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CalculatorHandler {
	return &CalculatorHandler{
		registry: registry,
		engine:   engine,
		defaults: defaults,
		metrics:  m,
		logger:   logger,
	}
}

type createCalculatorRequest struct {
	InitialText         map[domain.Field]string              `json:"initialText,omitempty"`
	Sliders             map[domain.Field]domain.SliderConfig `json:"sliders,omitempty"`
	SliderDebounceMs    *int                                 `json:"sliderDebounceMs,omitempty"`
	DisplayDebounceMs   *int                                 `json:"displayDebounceMs,omitempty"`
	RecomputeDebounceMs *int                                 `json:"recomputeDebounceMs,omitempty"`
	Locale              *domain.LocaleRule                   `json:"locale,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

func (h *CalculatorHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/flush", h.Flush)
		r.Put("/inputs/{field}", h.SetInput)
		r.Put("/sliders/{field}", h.MoveSlider)
		r.Put("/displays/{field}", h.EditDisplay)
	})
}

func (h *CalculatorHandler) Create(w http.ResponseWriter, r *http.Request) {
	// An empty body, chunked or not, means no overrides.
	var req createCalculatorRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.configFor(req)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	calc, err := h.registry.Create(cfg, h.engine,
		control.WithLogger(h.logger),
		control.WithMetrics(h.metrics),
	)
	if errors.Is(err, repository.ErrRegistryFull) {
		respondError(w, h.logger, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("creating calculator failed", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("calculator created", zap.String("calculator", calc.ID()))
	w.Header().Set("Location", "/calculators/"+calc.ID())
	respondJSON(w, h.logger, http.StatusCreated, calc.Snapshot())
}

// configFor overlays the request on a copy of the defaults.
func (h *CalculatorHandler) configFor(req createCalculatorRequest) (domain.CalculatorConfig, error) {
	cfg := h.defaults
	cfg.InputIDs = maps.Clone(h.defaults.InputIDs)
	cfg.Sliders = maps.Clone(h.defaults.Sliders)
	cfg.InitialText = maps.Clone(h.defaults.InitialText)
	if cfg.InitialText == nil {
		cfg.InitialText = map[domain.Field]string{}
	}

	for field, text := range req.InitialText {
		if _, err := domain.ParseField(string(field)); err != nil {
			return cfg, err
		}
		cfg.InitialText[field] = text
	}
	if req.Sliders != nil {
		for field, s := range req.Sliders {
			if _, err := domain.ParseField(string(field)); err != nil {
				return cfg, err
			}
			if s.Max < s.Min {
				return cfg, errors.New("slider max below min")
			}
		}
		cfg.Sliders = req.Sliders
	}
	if req.SliderDebounceMs != nil {
		cfg.SliderDebounce = time.Duration(*req.SliderDebounceMs) * time.Millisecond
	}
	if req.DisplayDebounceMs != nil {
		cfg.DisplayDebounce = time.Duration(*req.DisplayDebounceMs) * time.Millisecond
	}
	if req.RecomputeDebounceMs != nil {
		cfg.RecomputeDebounce = time.Duration(*req.RecomputeDebounceMs) * time.Millisecond
	}
	if req.Locale != nil {
		cfg.Locale = *req.Locale
	}
	return cfg, nil
}

func (h *CalculatorHandler) lookup(w http.ResponseWriter, r *http.Request) (*control.Calculator, bool) {
	calc, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusNotFound, err.Error())
		return nil, false
	}
	return calc, true
}

func (h *CalculatorHandler) field(w http.ResponseWriter, r *http.Request) (domain.Field, bool) {
	field, err := domain.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return "", false
	}
	return field, true
}

func (h *CalculatorHandler) Get(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, h.logger, http.StatusOK, calc.Snapshot())
}

func (h *CalculatorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CalculatorHandler) Flush(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	calc.Flush()
	respondJSON(w, h.logger, http.StatusOK, calc.Snapshot())
}

func (h *CalculatorHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	h.textEdit(w, r, (*control.Calculator).SetInput)
}

func (h *CalculatorHandler) EditDisplay(w http.ResponseWriter, r *http.Request) {
	h.textEdit(w, r, (*control.Calculator).EditDisplay)
}

func (h *CalculatorHandler) textEdit(
	w http.ResponseWriter,
	r *http.Request,
	apply func(*control.Calculator, domain.Field, string) error,
) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	field, ok := h.field(w, r)
	if !ok {
		return
	}

	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := apply(calc, field, req.Text); err != nil {
		h.respondEditError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusAccepted, calc.Snapshot())
}

func (h *CalculatorHandler) MoveSlider(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	field, ok := h.field(w, r)
	if !ok {
		return
	}

	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Value == nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := calc.MoveSlider(field, *req.Value); err != nil {
		h.respondEditError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusAccepted, calc.Snapshot())
}

func (h *CalculatorHandler) respondEditError(w http.ResponseWriter, err error) {
	if errors.Is(err, control.ErrNoSlider) {
		respondError(w, h.logger, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, h.logger, http.StatusBadRequest, err.Error())
}
