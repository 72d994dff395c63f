// Package consumer indexes document events read from the ingest topic.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
)

// DocumentAdder is implemented by *indexer.Engine.
type DocumentAdder interface {
	AddDocument(ctx context.Context, id int, text string, status document.Status, ratings []int) error
}

// HandleMessage returns a kafka.MessageHandler that adds each event to the
// index. Undecodable and rejected events are logged and acknowledged, since
// redelivery cannot make them succeed.
func HandleMessage(index DocumentAdder) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			logger.Error("failed to decode document event", "error", err, "key", string(key))
			return nil
		}
		if err := validator.ValidateDocumentEvent(&event); err != nil {
			logger.Warn("invalid document event skipped", "doc_id", event.ID, "error", err)
			return nil
		}
		status, _ := event.DocumentStatus()
		if err := index.AddDocument(ctx, event.ID, event.Text, status, event.Ratings); err != nil {
			if apperrors.IsRejection(err) {
				logger.Warn("document event rejected", "doc_id", event.ID, "error", err)
				return nil
			}
			return fmt.Errorf("indexing document %d: %w", event.ID, err)
		}
		logger.Debug("document event indexed", "doc_id", event.ID, "status", status)
		return nil
	}
}
