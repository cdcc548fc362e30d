package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "visuplant/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("validation error includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid tax id"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "validation_error" {
			t.Fatalf("expected error code validation_error, got %q", body["error"])
		}
		if body["error_description"] != "invalid tax id" {
			t.Fatalf("expected error_description to be returned for validation errors")
		}
	})

	t.Run("conflict and duplicate map to 409", func(t *testing.T) {
		for _, code := range []dErrors.Code{dErrors.CodeConflict, dErrors.CodeDuplicateEntry} {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(code, "taken"))
			if w.Code != http.StatusConflict {
				t.Fatalf("expected 409 for %s, got %d", code, w.Code)
			}
		}
	})

	t.Run("uncoded error is reported as internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errDummy)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
}

var errDummy = dummyError{}

type dummyError struct{}

func (dummyError) Error() string { return "boom" }
