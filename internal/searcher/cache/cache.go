// Package cache memoises ranked results in Redis. Entries are keyed by the
// index generation, the whitespace-normalised raw query and the status
// filter. A write bumps the generation, so entries computed before it are
// never read again; Invalidate only reclaims their space.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Entry is the cached form of one ranked result list.
type Entry struct {
	Generation uint64              `json:"generation"`
	Query      string              `json:"query"`
	Status     document.Status     `json:"status"`
	Documents  []document.Document `json:"documents"`
}

// Compute produces a ranked result and the index generation it was read at.
type Compute func() ([]document.Document, uint64, error)

type QueryCache struct {
	store   Store
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, generation uint64, query string, status document.Status) ([]document.Document, bool) {
	key := buildKey(generation, query, status)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		switch {
		case pkgredis.IsNilError(err):
		case errors.Is(err, resilience.ErrCircuitOpen):
			c.logger.Debug("cache bypassed", "key", key, "error", err)
		default:
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "query", query, "key", key)
	return entry.Documents, true
}

// Set stores docs as the result of query at generation.
func (c *QueryCache) Set(ctx context.Context, generation uint64, query string, status document.Status, docs []document.Document) {
	key := buildKey(generation, query, status)
	data, err := json.Marshal(Entry{Generation: generation, Query: query, Status: status, Documents: docs})
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Debug("cache bypassed", "key", key, "error", err)
			return
		}
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the result cached for query at generation or
// computes, stores and returns it. The computed result is stored under the
// generation compute reports, which may be newer than the one looked up.
// Concurrent misses for the same key share one computation. Errors from
// compute are returned and never cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	generation uint64,
	query string,
	status document.Status,
	compute Compute,
) ([]document.Document, bool, error) {
	if docs, ok := c.Get(ctx, generation, query, status); ok {
		return docs, true, nil
	}
	key := buildKey(generation, query, status)
	val, err, _ := c.group.Do(key, func() (any, error) {
		docs, computedAt, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, computedAt, query, status, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]document.Document), false, nil
}

// Invalidate drops every cached result. Correctness does not depend on it
// succeeding.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Debug("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func buildKey(generation uint64, query string, status document.Status) string {
	normalized := strings.Join(strings.FieldsFunc(query, func(r rune) bool { return r == ' ' }), " ")
	raw := fmt.Sprintf("%d|%s|status=%s", generation, normalized, status)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
