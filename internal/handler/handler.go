package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent
		return
	}
}

// statusFor maps an error to its HTTP status, error code and client message.
// Errors outside the domain taxonomy are reported as 500 with their message.
func statusFor(err error) (int, string, string) {
	var notFound *model.ProductNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusBadRequest, model.ErrCodeProductNotFound, notFound.Error()
	}
	var stock *model.InsufficientStockError
	if errors.As(err, &stock) {
		return http.StatusBadRequest, model.ErrCodeInsufficientStock, stock.Error()
	}

	var de *model.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, model.ErrCodeInternalError, err.Error()
	}

	switch de.Code {
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized, de.Code, de.Message
	case model.ErrCodeForbidden:
		return http.StatusForbidden, de.Code, de.Message
	case model.ErrCodeOrderNotFound, model.ErrCodeNotificationNotFound:
		return http.StatusNotFound, de.Code, de.Message
	case model.ErrCodePaymentAlreadyCompleted, model.ErrCodeGatewayPaymentReused, model.ErrCodeOrderCancelled:
		return http.StatusConflict, de.Code, de.Message
	case model.ErrCodeInternalError:
		return http.StatusInternalServerError, de.Code, de.Message
	default:
		return http.StatusBadRequest, de.Code, de.Message
	}
}

// writeError writes a model.ErrorResponse derived from err.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, code, message := statusFor(err)
	writeErrorCode(w, r, status, code, message, logger)
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	evt := logger.Warn()
	if status >= http.StatusInternalServerError {
		evt = logger.Error()
	}
	evt.Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: chimw.GetReqID(r.Context()),
	})
}

// decodeJSON decodes the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// requireUser returns the authenticated user id, writing a 401 when absent.
func requireUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorised, logger)
		return 0, false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
