package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/factoryops/inventory/models"
)

// Machine-readable error codes returned in the "code" field of error bodies.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeReferentialConflict = "REFERENTIAL_CONFLICT"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// OKResponse writes v as JSON with status 200.
func OKResponse(w http.ResponseWriter, v any) {
	JSONResponse(w, http.StatusOK, v)
}

func JSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func ErrorJSON(w http.ResponseWriter, status int, code, message string) {
	JSONResponse(w, status, ErrorResponse{Error: message, Code: code})
}

// Classify maps an error onto its HTTP status and error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, CodeInsufficientStock
	case errors.Is(err, models.ErrReferentialConflict):
		return http.StatusConflict, CodeReferentialConflict
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// Error writes err as an error body. Internal errors are logged and replaced
// by fallback so storage details do not leak to clients.
func Error(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, code := Classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), fallback, "err", err, "method", r.Method, "path", r.URL.Path)
		message = fallback
	}
	ErrorJSON(w, status, code, message)
}
