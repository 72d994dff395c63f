// Package ingestion defines the document event schema shared by the HTTP
// ingest endpoint, the Kafka consumer and the command-line publisher.
package ingestion

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
)

// DocumentEvent is the JSON payload of one document on the ingest topic and
// the body of POST /api/v1/documents.
type DocumentEvent struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Status  string `json:"status,omitempty"`
	Ratings []int  `json:"ratings"`
}

// DocumentStatus parses Status. An empty status means ACTUAL.
func (e DocumentEvent) DocumentStatus() (document.Status, error) {
	if e.Status == "" {
		return document.StatusActual, nil
	}
	s, err := document.ParseStatus(e.Status)
	if err != nil {
		return 0, fmt.Errorf("event %d: %w", e.ID, err)
	}
	return s, nil
}

// IngestResponse acknowledges an event accepted for asynchronous indexing.
type IngestResponse struct {
	DocumentID int    `json:"document_id"`
	Status     string `json:"status"`
}
