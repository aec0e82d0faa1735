package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/device"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeConflict     = "conflict"
	ErrCodeTimeout      = "timeout"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps a domain sentinel onto an HTTP error response.
// Unknown errors become a generic 500 and are logged by the caller.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrTokenInvalid):
		writeUnauthorized(w, "not authorised")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid credentials")
	case errors.Is(err, auth.ErrAccountExists):
		writeConflict(w, "an account with this username or email already exists")
	case errors.Is(err, org.ErrConflict):
		writeConflict(w, err.Error())
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, org.ErrNotFound),
		errors.Is(err, device.ErrNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, org.ErrInvalidInput),
		errors.Is(err, device.ErrInvalidInput):
		writeBadRequest(w, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		// The operation timeout expired somewhere below; the request
		// did not fail, it ran out of time.
		writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, "operation timed out")
	default:
		s.logger.Error("unhandled domain error", "error", err)
		writeInternalError(w, "internal server error")
	}
}
