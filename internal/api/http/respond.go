package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps domain errors onto HTTP statuses without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrBadSignature), errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrWrongCredentials):
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrCarUnavailable), errors.Is(err, domain.ErrDuplicateGatewayID):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrGatewayUnavailable):
		writeMessage(w, http.StatusServiceUnavailable, "payment gateway unavailable")
	default:
		logger.Error("Unhandled request error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
