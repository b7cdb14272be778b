package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/incluia/assessment-adapter/internal/domain"
)

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch domain.TypeOf(err) {
	case domain.ErrorTypeValidation, domain.ErrorTypeNoContent:
		return http.StatusBadRequest
	case domain.ErrorTypeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case domain.ErrorTypeDocumentRead, domain.ErrorTypeConversion:
		return http.StatusUnprocessableEntity
	case domain.ErrorTypeConversionTimeout:
		return http.StatusGatewayTimeout
	case domain.ErrorTypeEmptyResponse:
		return http.StatusBadGateway
	case domain.ErrorTypeModelUnavailable:
		return http.StatusServiceUnavailable
	}
	if domain.IsType(err, domain.ErrorTypeModelUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}

	errType := string(domain.TypeOf(err))
	if errType == "" {
		errType = "internal"
	}
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
