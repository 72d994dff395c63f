// Package validator checks document events before they reach the index or
// the ingest topic, returning per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

const (
	maxTextLength = 1 << 20
	maxRatings    = 1024
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateDocumentEvent mirrors the index's own admission rules so an event
// that would be rejected never reaches the topic.
func ValidateDocumentEvent(ev *ingestion.DocumentEvent) error {
	errs := make(map[string]string)
	if ev.ID < 0 {
		errs["id"] = "id must not be negative"
	}
	if len(ev.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	} else if !tokenizer.IsValidWord(ev.Text) {
		errs["text"] = "text must not contain control characters"
	}
	if _, err := ev.DocumentStatus(); err != nil {
		errs["status"] = fmt.Sprintf("unknown status %q", ev.Status)
	}
	if len(ev.Ratings) > maxRatings {
		errs["ratings"] = fmt.Sprintf("at most %d ratings allowed", maxRatings)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
