// Package response writes the JSON envelopes used by every endpoint:
// {"message": ..., ...payload} on success and {"message": ..., "data": ...}
// on failure.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

// Fields is the payload merged next to "message" in a success envelope.
type Fields map[string]any

type errorEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.Logger().WarnContext(r.Context(), "encode response", "error", err)
	}
}

// Message writes {"message": message} merged with fields. A "message" key in
// fields is ignored.
func Message(w http.ResponseWriter, r *http.Request, status int, message string, fields Fields) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["message"] = message
	JSON(w, r, status, body)
}

// Error maps err to its status and writes the failure envelope. Untyped
// errors become 500 with a generic message and are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		observability.Logger().ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	JSON(w, r, ae.Status, errorEnvelope{Message: ae.Message, Data: ae.Data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
