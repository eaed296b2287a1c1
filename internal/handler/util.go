package handler

import (
	"encoding/json"
	"net/http"

	"github.com/parley-ai/chat-broker/internal/apperr"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response for an arbitrary status and code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// writeAppError translates a service error into its HTTP shape. Anything
// outside the taxonomy is reported as an internal fault without detail.
func writeAppError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	writeError(w, apperr.HTTPStatus(kind), string(kind), apperr.MessageOf(err))
}
