// Package indexer hosts the Engine, a lock-protected SearchServer shared by
// the HTTP handlers, the Kafka ingestion consumer and the start-up loader.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/searchserver"
)

// Invalidator drops derived state (cached results) after the index changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Engine struct {
	mu            sync.RWMutex
	server        *searchserver.SearchServer
	generation    uint64
	defaultStatus document.Status
	metrics       *metrics.Metrics
	invalidators  []Invalidator
	logger        *slog.Logger
}

type Option func(*Engine)

// WithMetrics records document and query metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithInvalidator registers inv to run after every accepted write.
func WithInvalidator(inv Invalidator) Option {
	return func(e *Engine) { e.invalidators = append(e.invalidators, inv) }
}

func NewEngine(cfg config.SearchConfig, opts ...Option) (*Engine, error) {
	status, err := document.ParseStatus(cfg.DefaultStatus)
	if err != nil {
		return nil, fmt.Errorf("parsing default status: %w", err)
	}
	e := &Engine{
		server:        searchserver.NewFromText(cfg.StopWords),
		defaultStatus: status,
		logger:        slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AddInvalidator registers inv after construction, for collaborators that
// are created once the engine exists.
func (e *Engine) AddInvalidator(inv Invalidator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invalidators = append(e.invalidators, inv)
}

func (e *Engine) AddDocument(ctx context.Context, id int, text string, status document.Status, ratings []int) error {
	e.mu.Lock()
	err := e.server.AddDocument(id, text, status, ratings)
	if err == nil {
		e.generation++
	}
	count := e.server.DocumentCount()
	e.mu.Unlock()

	log := logger.FromContext(ctx).With("component", "indexer")
	if err != nil {
		if e.metrics != nil {
			e.metrics.DocumentsRejected.WithLabelValues(rejectionReason(err)).Inc()
		}
		log.Warn("document rejected", "doc_id", id, "error", err)
		return err
	}
	if e.metrics != nil {
		e.metrics.DocumentsAddedTotal.Inc()
		e.metrics.DocumentsStored.Set(float64(count))
	}
	log.Debug("document indexed", "doc_id", id, "status", status, "documents", count)
	e.invalidate(ctx)
	return nil
}

func (e *Engine) SetStopWords(ctx context.Context, text string) {
	e.mu.Lock()
	e.server.SetStopWords(text)
	e.generation++
	e.mu.Unlock()
	e.logger.Info("stop words updated", "added", text)
	e.invalidate(ctx)
}

func (e *Engine) StopWords() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.server.StopWords()
}

// FindTopDocuments ranks documents in the engine's default status.
func (e *Engine) FindTopDocuments(ctx context.Context, rawQuery string) ([]document.Document, error) {
	return e.FindTopDocumentsByStatus(ctx, rawQuery, e.defaultStatus)
}

func (e *Engine) FindTopDocumentsByStatus(ctx context.Context, rawQuery string, status document.Status) ([]document.Document, error) {
	return e.FindTopDocumentsFunc(ctx, rawQuery, document.WithStatus(status))
}

func (e *Engine) FindTopDocumentsFunc(ctx context.Context, rawQuery string, pred document.Predicate) ([]document.Document, error) {
	docs, _, err := e.findTop(ctx, rawQuery, pred)
	return docs, err
}

// FindTopDocumentsVersioned is FindTopDocumentsByStatus that also returns the
// generation the result was computed at, read under the same lock.
func (e *Engine) FindTopDocumentsVersioned(ctx context.Context, rawQuery string, status document.Status) ([]document.Document, uint64, error) {
	return e.findTop(ctx, rawQuery, document.WithStatus(status))
}

// Generation counts accepted writes and stop-word changes. Results computed
// at different generations may differ.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

func (e *Engine) findTop(ctx context.Context, rawQuery string, pred document.Predicate) ([]document.Document, uint64, error) {
	start := time.Now()
	e.mu.RLock()
	docs, err := e.server.FindTopDocumentsFunc(rawQuery, pred)
	gen := e.generation
	e.mu.RUnlock()
	e.observeQuery("find_top", start, len(docs), err)
	if err != nil {
		return nil, gen, err
	}
	logger.FromContext(ctx).Debug("query executed",
		"component", "indexer",
		"query", rawQuery,
		"results", len(docs),
		"generation", gen,
	)
	return docs, gen, nil
}

// MatchDocument is SearchServer.MatchDocument with the id checked first:
// an unknown id yields ErrDocumentNotFound instead of a panic.
func (e *Engine) MatchDocument(ctx context.Context, rawQuery string, id int) ([]string, document.Status, error) {
	start := time.Now()
	e.mu.RLock()
	if !e.server.HasDocument(id) {
		e.mu.RUnlock()
		return nil, 0, fmt.Errorf("matching document %d: %w", id, apperrors.ErrDocumentNotFound)
	}
	words, status, err := e.server.MatchDocument(rawQuery, id)
	e.mu.RUnlock()
	e.observeQuery("match", start, len(words), err)
	if err != nil {
		return nil, 0, err
	}
	return words, status, nil
}

func (e *Engine) DocumentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.server.DocumentCount()
}

// DocumentID returns the id at ordinal in ascending id order, or
// document.InvalidID.
func (e *Engine) DocumentID(ordinal int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.server.DocumentID(ordinal)
}

func (e *Engine) DefaultStatus() document.Status {
	return e.defaultStatus
}

func (e *Engine) observeQuery(operation string, start time.Time, results int, err error) {
	if e.metrics == nil {
		return
	}
	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeInvalid
	case results == 0:
		outcome = metrics.OutcomeZeroResult
	}
	e.metrics.QueriesTotal.WithLabelValues(operation, outcome).Inc()
	e.metrics.QueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil && operation == "find_top" {
		e.metrics.QueryResultsCount.Observe(float64(results))
	}
}

func (e *Engine) invalidate(ctx context.Context) {
	e.mu.RLock()
	invalidators := make([]Invalidator, len(e.invalidators))
	copy(invalidators, e.invalidators)
	e.mu.RUnlock()
	for _, inv := range invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			e.logger.Error("invalidation failed", "error", err)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidDocumentID):
		return "invalid_id"
	case errors.Is(err, apperrors.ErrDocumentExists):
		return "duplicate"
	case errors.Is(err, apperrors.ErrInvalidDocumentText):
		return "invalid_text"
	default:
		return "other"
	}
}
