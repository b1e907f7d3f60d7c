package http

import (
	"errors"
	"net/http"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/goccy/go-json"
)

// Error codes carried in the JSON error body, so clients can map a 404
// back to the right sentinel.
const (
	codeSessionNotFound = "session_not_found"
	codeNodeNotFound    = "node_not_found"
	codeBadAddress      = "malformed_address"
	codeBadPayload      = "malformed_payload"
	codeTooLarge        = "too_large"
	codeInvalidRequest  = "invalid_request"
	codeInternal        = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, codeSessionNotFound
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, codeNodeNotFound
	case errors.Is(err, domain.ErrMalformedAddress):
		return http.StatusBadRequest, codeBadAddress
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusUnprocessableEntity, codeBadPayload
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
