package http

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"loan-calculator/domain"
	"loan-calculator/service"
)

type LoanHandler struct {
	service *service.LoanService
	logger  *zap.Logger
}

func NewLoanHandler(service *service.LoanService, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{service: service, logger: logger}
}

type calculateResponse struct {
	Inputs  domain.LoanInputs   `json:"inputs"`
	Result  domain.LoanResult   `json:"result"`
	Display domain.DisplayState `json:"display"`
}

func (h *LoanHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	var input domain.LoanInputs
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	result, display, err := h.service.CalculateLoan(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, calculateResponse{
		Inputs:  input,
		Result:  result,
		Display: display,
	})
}

// History lists recent calculations, newest first.
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, h.logger, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing history failed", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, records)
}
