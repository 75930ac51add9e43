package http

import (
	"net/http"

	"go.uber.org/zap"

	"loan-calculator/domain"
	"loan-calculator/service"
)

type TermHandler struct {
	service *service.TermService
	logger  *zap.Logger
}

func NewTermHandler(service *service.TermService, logger *zap.Logger) *TermHandler {
	return &TermHandler{service: service, logger: logger}
}

func (h *TermHandler) RecommendTerm(w http.ResponseWriter, r *http.Request) {
	var input domain.TermRecommendationInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.logger.Debug("decoding request body failed", zap.Error(err))
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.RecommendTerm(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

func (h *TermHandler) CompareTerms(w http.ResponseWriter, r *http.Request) {
	var input domain.TermComparisonInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.logger.Debug("decoding request body failed", zap.Error(err))
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	tbl, err := h.service.CompareTerms(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, h.logger, http.StatusOK, tbl)
}
