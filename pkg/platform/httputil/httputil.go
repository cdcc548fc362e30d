// Package httputil centralizes JSON encoding and domain error translation
// for HTTP handlers so every endpoint returns the same envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "visuplant/pkg/domain-errors"
)

// errorResponse is the JSON error envelope. Internal errors omit the
// description so storage details never leak to callers.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:     http.StatusBadRequest,
	dErrors.CodeBadRequest:     http.StatusBadRequest,
	dErrors.CodeNotFound:       http.StatusNotFound,
	dErrors.CodeConflict:       http.StatusConflict,
	dErrors.CodeDuplicateEntry: http.StatusConflict,
	dErrors.CodeLimitExceeded:  http.StatusUnprocessableEntity,
	dErrors.CodeUnauthorized:   http.StatusUnauthorized,
	dErrors.CodeInternal:       http.StatusInternalServerError,
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Non-coded errors are reported as internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, status, resp)
}

// Decode reads a JSON request body into dst. On failure it writes a
// bad_request envelope and returns false; handlers should return early.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return false
	}
	return true
}
