// Package handler serves the search, match and document endpoints over
// HTTP on top of the shared engine.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
)

// Index is implemented by *indexer.Engine.
type Index interface {
	AddDocument(ctx context.Context, id int, text string, status document.Status, ratings []int) error
	FindTopDocumentsVersioned(ctx context.Context, rawQuery string, status document.Status) ([]document.Document, uint64, error)
	Generation() uint64
	MatchDocument(ctx context.Context, rawQuery string, id int) ([]string, document.Status, error)
	DocumentCount() int
	DocumentID(ordinal int) int
	DefaultStatus() document.Status
	SetStopWords(ctx context.Context, text string)
	StopWords() []string
}

type SearchResponse struct {
	Query     string              `json:"query"`
	Status    document.Status     `json:"status"`
	Documents []document.Document `json:"documents"`
	CacheHit  bool                `json:"cache_hit"`
}

type MatchResponse struct {
	DocumentID int             `json:"document_id"`
	Words      []string        `json:"words"`
	Status     document.Status `json:"status"`
}

type Handler struct {
	index     Index
	cache     *cache.QueryCache
	collector *analytics.Collector
	logger    *slog.Logger
}

// New builds a handler. queryCache and collector may be nil.
func New(index Index, queryCache *cache.QueryCache, collector *analytics.Collector) *Handler {
	return &Handler{
		index:     index,
		cache:     queryCache,
		collector: collector,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/match", h.Match)
	mux.HandleFunc("POST /api/v1/documents", h.AddDocument)
	mux.HandleFunc("GET /api/v1/documents", h.DocumentCount)
	mux.HandleFunc("GET /api/v1/documents/{ordinal}", h.DocumentID)
	mux.HandleFunc("GET /api/v1/stopwords", h.StopWords)
	mux.HandleFunc("POST /api/v1/stopwords", h.AddStopWords)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Search handles GET /api/v1/search?q=&status=. An empty q is a valid
// query with no results.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	status := h.index.DefaultStatus()
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := document.ParseStatus(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	compute := func() ([]document.Document, uint64, error) {
		return h.index.FindTopDocumentsVersioned(ctx, query, status)
	}
	var (
		docs     []document.Document
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		docs, cacheHit, err = h.cache.GetOrCompute(ctx, h.index.Generation(), query, status, compute)
	} else {
		docs, _, err = compute()
	}

	event := analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Query:     query,
		Status:    status.String(),
		Returned:  len(docs),
		Invalid:   err != nil,
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	}
	h.track(event, start)
	if err != nil {
		h.writeAppError(w, log, err)
		return
	}

	log.Info("search completed",
		"query", query,
		"status", status,
		"returned", len(docs),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:     query,
		Status:    status,
		Documents: docs,
		CacheHit:  cacheHit,
	})
}

// Match handles GET /api/v1/match?q=&id=.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "query parameter 'id' must be an integer")
		return
	}
	words, status, err := h.index.MatchDocument(ctx, query, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidQuery) {
			h.track(analytics.SearchEvent{
				Type:      analytics.EventMatch,
				Query:     query,
				Invalid:   true,
				Timestamp: time.Now().UTC(),
				RequestID: logger.RequestID(ctx),
			}, start)
		}
		h.writeAppError(w, log, err)
		return
	}
	h.track(analytics.SearchEvent{
		Type:      analytics.EventMatch,
		Query:     query,
		Status:    status.String(),
		Returned:  len(words),
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	}, start)
	h.writeJSON(w, http.StatusOK, MatchResponse{DocumentID: id, Words: words, Status: status})
}

// AddDocument handles POST /api/v1/documents, indexing synchronously.
func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var ev ingestion.DocumentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status, err := ev.DocumentStatus()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.index.AddDocument(ctx, ev.ID, ev.Text, status, ev.Ratings); err != nil {
		h.writeAppError(w, log, err)
		return
	}
	log.Info("document added", "doc_id", ev.ID, "status", status)
	h.writeJSON(w, http.StatusCreated, map[string]int{"document_id": ev.ID})
}

// DocumentCount handles GET /api/v1/documents.
func (h *Handler) DocumentCount(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]int{"count": h.index.DocumentCount()})
}

// DocumentID handles GET /api/v1/documents/{ordinal}.
func (h *Handler) DocumentID(w http.ResponseWriter, r *http.Request) {
	ordinal, err := strconv.Atoi(r.PathValue("ordinal"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "ordinal must be an integer")
		return
	}
	id := h.index.DocumentID(ordinal)
	if id == document.InvalidID {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("no document at ordinal %d", ordinal))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"ordinal": ordinal, "document_id": id})
}

func (h *Handler) StopWords(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"stop_words": h.index.StopWords()})
}

// AddStopWords handles POST /api/v1/stopwords with body {"text": "..."}.
// Words are added to the current set; none are removed.
func (h *Handler) AddStopWords(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.index.SetStopWords(r.Context(), body.Text)
	h.writeJSON(w, http.StatusOK, map[string][]string{"stop_words": h.index.StopWords()})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) track(event analytics.SearchEvent, start time.Time) {
	if h.collector == nil {
		return
	}
	event.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	h.collector.Track(event)
}

func (h *Handler) writeAppError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		h.writeError(w, status, "internal error")
		return
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		h.writeJSON(w, status, map[string]any{"error": "validation failed", "fields": verr.Fields})
		return
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
