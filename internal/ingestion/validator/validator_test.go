package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

func TestValidateDocumentEvent(t *testing.T) {
	tests := []struct {
		name   string
		event  ingestion.DocumentEvent
		fields []string
	}{
		{"valid", ingestion.DocumentEvent{ID: 1, Text: "белый кот", Status: "ACTUAL", Ratings: []int{8}}, nil},
		{"empty status defaults", ingestion.DocumentEvent{ID: 0, Text: ""}, nil},
		{"lower-case status", ingestion.DocumentEvent{ID: 2, Text: "x", Status: "banned"}, nil},
		{"negative id", ingestion.DocumentEvent{ID: -1, Text: "x"}, []string{"id"}},
		{"control character", ingestion.DocumentEvent{ID: 1, Text: "скво\x12рец"}, []string{"text"}},
		{"unknown status", ingestion.DocumentEvent{ID: 1, Text: "x", Status: "ARCHIVED"}, []string{"status"}},
		{"too long", ingestion.DocumentEvent{ID: 1, Text: strings.Repeat("a", maxTextLength+1)}, []string{"text"}},
		{"many problems", ingestion.DocumentEvent{ID: -5, Text: "\x01", Status: "?"}, []string{"id", "text", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentEvent(&tt.event)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Errorf("fields = %v, want %v", verr.Fields, tt.fields)
			}
			for _, f := range tt.fields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("missing field %q in %v", f, verr.Fields)
				}
			}
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Error("validation errors must wrap ErrInvalidInput")
			}
		})
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"text": "b", "id": "a"}}
	if got := err.Error(); got != "id: a; text: b" {
		t.Errorf("Error() = %q", got)
	}
}
