// Package publisher validates document events and writes them to the
// ingest topic, keyed by document id so a document always lands on the
// same partition.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
)

// EventWriter is the subset of *kafka.Producer the publisher needs.
type EventWriter interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

type Publisher struct {
	producer EventWriter
	logger   *slog.Logger
}

func New(producer EventWriter) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Publish validates every event and writes them as one batch. Nothing is
// written if any event is invalid.
func (p *Publisher) Publish(ctx context.Context, events ...ingestion.DocumentEvent) error {
	batch := make([]kafka.Event, 0, len(events))
	for i := range events {
		if err := validator.ValidateDocumentEvent(&events[i]); err != nil {
			return fmt.Errorf("document %d: %w", events[i].ID, err)
		}
		batch = append(batch, kafka.Event{
			Key:   strconv.Itoa(events[i].ID),
			Value: events[i],
		})
	}
	if err := p.producer.PublishBatch(ctx, batch); err != nil {
		return fmt.Errorf("publishing %d documents: %w", len(batch), err)
	}
	p.logger.Debug("documents published", "count", len(batch))
	return nil
}
