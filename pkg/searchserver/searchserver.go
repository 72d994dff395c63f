// Package searchserver is an in-memory TF-IDF document index. Documents are
// short texts tagged with an id, a status and a list of ratings; queries
// are space-separated terms where a leading "-" excludes documents.
//
// A SearchServer performs no locking. Hosts sharing one across goroutines
// must serialise writers (AddDocument, SetStopWords) against readers.
package searchserver

import (
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

type (
	Document  = document.Document
	Status    = document.Status
	Predicate = document.Predicate
	// Query is a parsed query: deduplicated plus and minus words.
	Query = parser.Query
)

const (
	StatusActual     = document.StatusActual
	StatusIrrelevant = document.StatusIrrelevant
	StatusBanned     = document.StatusBanned
	StatusRemoved    = document.StatusRemoved

	InvalidDocumentID      = document.InvalidID
	MaxResultDocumentCount = ranker.MaxResultDocumentCount
)

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	return document.ParseStatus(s)
}

type SearchServer struct {
	stopWords *stopwords.Set
	index     *index.InvertedIndex
	store     *index.DocumentStore
	exec      *executor.Executor
	logger    *slog.Logger
}

// New creates a SearchServer seeded with the given stop words. Empty
// entries are ignored.
func New(stopWords ...string) *SearchServer {
	return newServer(stopwords.New(stopWords...))
}

// NewFromText creates a SearchServer whose stop words are the
// space-separated words of text.
func NewFromText(text string) *SearchServer {
	return newServer(stopwords.FromText(text))
}

func newServer(stop *stopwords.Set) *SearchServer {
	ix := index.NewInvertedIndex()
	store := index.NewDocumentStore()
	return &SearchServer{
		stopWords: stop,
		index:     ix,
		store:     store,
		exec:      executor.New(ix, store),
		logger:    slog.Default().With("component", "search-server"),
	}
}

// SetStopWords adds every space-separated word of text to the stop words.
// Documents already indexed are not re-indexed.
func (s *SearchServer) SetStopWords(text string) {
	s.stopWords.Add(text)
}

// StopWords returns the current stop words in ascending order.
func (s *SearchServer) StopWords() []string {
	return s.stopWords.Words()
}

// AddDocument indexes text under id. It fails without changing any state
// when id is negative, already present, or text is not a valid word.
func (s *SearchServer) AddDocument(id int, text string, status Status, ratings []int) error {
	switch {
	case id < 0:
		s.logger.Debug("document rejected", "doc_id", id, "reason", "negative id")
		return fmt.Errorf("adding document %d: %w", id, apperrors.ErrInvalidDocumentID)
	case s.store.Has(id):
		s.logger.Debug("document rejected", "doc_id", id, "reason", "duplicate id")
		return fmt.Errorf("adding document %d: %w", id, apperrors.ErrDocumentExists)
	case !tokenizer.IsValidWord(text):
		s.logger.Debug("document rejected", "doc_id", id, "reason", "invalid characters")
		return fmt.Errorf("adding document %d: %w", id, apperrors.ErrInvalidDocumentText)
	}

	words := s.stopWords.Filter(tokenizer.SplitIntoWords(text))
	s.index.AddDocument(id, words)
	s.store.Add(id, index.Record{
		Rating: document.AverageRating(ratings),
		Status: status,
	})
	return nil
}

// FindTopDocuments returns up to MaxResultDocumentCount ACTUAL documents
// ranked for rawQuery. A malformed query yields an error wrapping
// ErrInvalidQuery; a valid query without matches yields an empty slice.
func (s *SearchServer) FindTopDocuments(rawQuery string) ([]Document, error) {
	return s.FindTopDocumentsByStatus(rawQuery, StatusActual)
}

// FindTopDocumentsByStatus is FindTopDocuments restricted to status.
func (s *SearchServer) FindTopDocumentsByStatus(rawQuery string, status Status) ([]Document, error) {
	return s.FindTopDocumentsFunc(rawQuery, document.WithStatus(status))
}

// FindTopDocumentsFunc is FindTopDocuments restricted to documents for
// which pred holds.
func (s *SearchServer) FindTopDocumentsFunc(rawQuery string, pred Predicate) ([]Document, error) {
	q, err := s.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return ranker.Rank(s.exec.FindAllDocuments(q, pred), MaxResultDocumentCount), nil
}

// MatchDocument returns the query's plus terms present in document id, in
// ascending order, together with its status. The term list is empty when
// any minus term is present. id must have been added: an unknown id
// panics. Callers that cannot guarantee this check HasDocument first.
func (s *SearchServer) MatchDocument(rawQuery string, id int) ([]string, Status, error) {
	q, err := s.ParseQuery(rawQuery)
	if err != nil {
		return nil, 0, err
	}
	words, status := s.exec.MatchDocument(q, id)
	return words, status, nil
}

// ParseQuery parses rawQuery against the current stop words.
func (s *SearchServer) ParseQuery(rawQuery string) (*Query, error) {
	q, err := parser.Parse(rawQuery, s.stopWords)
	if err != nil {
		s.logger.Debug("query rejected", "query", rawQuery, "error", err)
		return nil, err
	}
	return q, nil
}

func (s *SearchServer) DocumentCount() int {
	return s.store.Count()
}

// DocumentID returns the id at ordinal in ascending id order, or
// InvalidDocumentID when ordinal is out of range.
func (s *SearchServer) DocumentID(ordinal int) int {
	return s.store.IDAt(ordinal)
}

func (s *SearchServer) HasDocument(id int) bool {
	return s.store.Has(id)
}

// TermFrequencies returns the indexed terms of document id with their
// frequencies. An unknown id yields an empty map.
func (s *SearchServer) TermFrequencies(id int) map[string]float64 {
	return s.index.TermFrequencies(id)
}
