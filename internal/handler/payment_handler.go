package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles payment verification and payment history.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Verify handles POST /api/payments/verify. Failures keep the
// {success, message} shape of the success response.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.VerifyPaymentRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	res, err := h.service.Verify(r.Context(), userID, &req)
	if err != nil {
		status, code, message := statusFor(err)
		h.logger.Warn().
			Err(err).
			Str("code", code).
			Int64("user_id", userID).
			Msg("payment verification failed")
		writeJSON(w, status, model.VerifyPaymentResult{Success: false, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// History handles GET /api/payments/history.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	txns, err := h.service.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, txns)
}

// AllTransactions handles GET /api/admin/transactions.
func (h *PaymentHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid limit parameter", h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid offset parameter", h.logger)
		return
	}

	txns, err := h.service.AllTransactions(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, txns)
}
