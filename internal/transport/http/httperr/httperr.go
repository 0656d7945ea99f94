package httperr

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FieldError is one failed validation with its field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// Validation writes a 400 with every failing field listed.
func Validation(w http.ResponseWriter, details []FieldError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "validation failed",
		Details: details,
	})
}

// BadRequest writes a 400 with a single message.
func BadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: msg})
}

// Unauthorized writes a 401, used for upstream credential failures.
func Unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msg})
}

// Internal writes a 500 with a generic message; the detail goes to the log
// only, never to the caller.
func Internal(w http.ResponseWriter, err error) {
	slog.Error("Internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// JSON writes an arbitrary response body with the given status.
func JSON(w http.ResponseWriter, status int, body any) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
