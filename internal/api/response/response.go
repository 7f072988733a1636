// Package response centralizes JSON response writing, including the
// mapping from engine error kinds to HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cardduel/cardduel/internal/clients"
	"github.com/cardduel/cardduel/internal/engine"
)

// ErrorResponse is the envelope for API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse is the envelope for successful responses with data.
type SuccessResponse struct {
	Data any `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a 200 OK response.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnauthorized, err)
}

// Forbidden writes a 403 Forbidden response.
func Forbidden(w http.ResponseWriter, err error) {
	Error(w, http.StatusForbidden, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// Conflict writes a 409 Conflict response.
func Conflict(w http.ResponseWriter, err error) {
	Error(w, http.StatusConflict, err)
}

// UnprocessableEntity writes a 422 Unprocessable Entity response.
func UnprocessableEntity(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnprocessableEntity, err)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// ServiceUnavailable writes a 503 Service Unavailable response.
func ServiceUnavailable(w http.ResponseWriter, err error) {
	Error(w, http.StatusServiceUnavailable, err)
}

// EngineError maps an engine error to its HTTP status and writes it.
// Invalid match state maps to 422: the request is well-formed but the
// match cannot accept it.
func EngineError(w http.ResponseWriter, err error) {
	switch engine.KindOf(err) {
	case engine.KindInvalidArgument:
		BadRequest(w, err)
	case engine.KindInvalidState:
		UnprocessableEntity(w, err)
	case engine.KindForbidden:
		Forbidden(w, err)
	case engine.KindNotFound:
		NotFound(w, err)
	case engine.KindConflict:
		Conflict(w, err)
	default:
		InternalError(w, err)
	}
}

// AuthError maps identity verification failures: bad tokens are 401,
// verifier outages are 503.
func AuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clients.ErrUnauthenticated):
		Unauthorized(w, err)
	case errors.Is(err, clients.ErrAuthUnavailable):
		ServiceUnavailable(w, err)
	default:
		InternalError(w, err)
	}
}
