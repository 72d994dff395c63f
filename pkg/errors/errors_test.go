package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrDocumentNotFound, http.StatusNotFound},
		{"duplicate", fmt.Errorf("adding 1: %w", ErrDocumentExists), http.StatusConflict},
		{"negative id", ErrInvalidDocumentID, http.StatusBadRequest},
		{"control chars", ErrInvalidDocumentText, http.StatusBadRequest},
		{"query", fmt.Errorf("parse: %w", ErrInvalidQuery), http.StatusBadRequest},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"app error wins", New(ErrInvalidQuery, http.StatusTeapot, "x"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrDocumentNotFound, http.StatusNotFound, "document %d", 7)
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Error("expected AppError to unwrap to sentinel")
	}
	if err.Error() != "document not found: document 7" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsRejection(t *testing.T) {
	if !IsRejection(fmt.Errorf("x: %w", ErrDocumentExists)) {
		t.Error("duplicate document should be a rejection")
	}
	if IsRejection(ErrInternal) {
		t.Error("internal error should not be a rejection")
	}
}
