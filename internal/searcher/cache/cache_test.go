package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	default:
		return errors.New("unsupported value type")
	}
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func TestGetOrComputeCachesResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := newMemoryStore()
	c := New(store, time.Minute, m)
	ctx := context.Background()

	var calls atomic.Int64
	compute := func() ([]document.Document, uint64, error) {
		calls.Add(1)
		return []document.Document{{ID: 1, Relevance: 0.27, Rating: 5}}, 0, nil
	}

	docs, hit, err := c.GetOrCompute(ctx, 0, "кот", document.StatusActual, compute)
	if err != nil || hit || len(docs) != 1 {
		t.Fatalf("first call = %+v, %v, %v", docs, hit, err)
	}
	docs, hit, err = c.GetOrCompute(ctx, 0, "  кот ", document.StatusActual, compute)
	if err != nil || !hit || len(docs) != 1 || docs[0].Rating != 5 {
		t.Fatalf("second call = %+v, %v, %v", docs, hit, err)
	}
	if calls.Load() != 1 {
		t.Errorf("compute called %d times, want 1", calls.Load())
	}
	if _, hit, _ := c.GetOrCompute(ctx, 0, "кот", document.StatusBanned, compute); hit {
		t.Error("different status must not share a cache entry")
	}
	if _, hit, _ := c.GetOrCompute(ctx, 1, "кот", document.StatusActual, compute); hit {
		t.Error("different generation must not share a cache entry")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache hits metric = %v", got)
	}
	for _, ttl := range store.ttls {
		if ttl != time.Minute {
			t.Errorf("unexpected ttl %v", ttl)
		}
	}
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	ctx := context.Background()
	boom := errors.New("invalid")
	for i := 0; i < 2; i++ {
		_, hit, err := c.GetOrCompute(ctx, 0, "--кот", document.StatusActual, func() ([]document.Document, uint64, error) {
			return nil, 0, boom
		})
		if !errors.Is(err, boom) || hit {
			t.Fatalf("call %d = %v, %v", i, hit, err)
		}
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, 0, "кот", document.StatusActual, []document.Document{{ID: 1}})
	c.Set(ctx, 0, "пёс", document.StatusActual, []document.Document{})
	store.data["unrelated"] = "x"

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := c.Get(ctx, 0, "кот", document.StatusActual); ok {
		t.Error("entry survived invalidation")
	}
	if _, ok := store.data["unrelated"]; !ok {
		t.Error("invalidation must only remove cache keys")
	}
}

func TestGetCorruptEntryIsMiss(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	store.data[buildKey(0, "кот", document.StatusActual)] = "{not json"
	if _, ok := c.Get(context.Background(), 0, "кот", document.StatusActual); ok {
		t.Error("corrupt entry must be treated as a miss")
	}
}

type flakyStore struct {
	*memoryStore
	down  bool
	calls int
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	f.calls++
	if f.down {
		return "", errors.New("i/o timeout")
	}
	return f.memoryStore.Get(ctx, key)
}

func TestBreakerStoreOpensOnFailures(t *testing.T) {
	flaky := &flakyStore{memoryStore: newMemoryStore()}
	cb := resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour})
	c := New(WithBreaker(flaky, cb), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, ok := c.Get(ctx, 0, "кот", document.StatusActual); ok {
			t.Fatal("unexpected hit")
		}
	}
	if cb.State() != resilience.StateClosed {
		t.Fatal("missing keys must not open the circuit")
	}

	flaky.down = true
	for i := 0; i < 5; i++ {
		c.Get(ctx, 0, "кот", document.StatusActual)
	}
	if cb.State() != resilience.StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}
	if flaky.calls != 5 {
		t.Errorf("store called %d times, want 5 (3 misses + 2 failures)", flaky.calls)
	}

	c.Set(ctx, 0, "пёс", document.StatusActual, []document.Document{{ID: 1}})
	if len(flaky.data) != 0 {
		t.Error("writes must be skipped while the circuit is open")
	}
	flaky.data["search:stale"] = "x"
	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if len(flaky.data) != 0 {
		t.Error("invalidation must bypass the breaker")
	}
}

type brokenFlushStore struct {
	*memoryStore
}

func (brokenFlushStore) FlushByPattern(context.Context, string) (int64, error) {
	return 0, errors.New("connection reset")
}

func newCachedEngine(t *testing.T, store Store) (*indexer.Engine, *QueryCache) {
	t.Helper()
	engine, err := indexer.NewEngine(config.SearchConfig{DefaultStatus: "ACTUAL"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	c := New(store, time.Minute, nil)
	engine.AddInvalidator(c)
	if err := engine.AddDocument(context.Background(), 1, "кот", document.StatusActual, []int{1}); err != nil {
		t.Fatal(err)
	}
	return engine, c
}

func search(engine *indexer.Engine, query string) Compute {
	return func() ([]document.Document, uint64, error) {
		return engine.FindTopDocumentsVersioned(context.Background(), query, document.StatusActual)
	}
}

func TestWriteDuringComputeLeavesNoStaleEntry(t *testing.T) {
	engine, c := newCachedEngine(t, newMemoryStore())
	ctx := context.Background()

	docs, hit, err := c.GetOrCompute(ctx, engine.Generation(), "пёс", document.StatusActual,
		func() ([]document.Document, uint64, error) {
			docs, gen, err := search(engine, "пёс")()
			if addErr := engine.AddDocument(ctx, 2, "пёс", document.StatusActual, nil); addErr != nil {
				t.Fatalf("AddDocument: %v", addErr)
			}
			return docs, gen, err
		})
	if err != nil || hit || len(docs) != 0 {
		t.Fatalf("first search = %v, %v, %v", docs, hit, err)
	}

	docs, hit, err = c.GetOrCompute(ctx, engine.Generation(), "пёс", document.StatusActual, search(engine, "пёс"))
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("result computed before the write was served after it")
	}
	if len(docs) != 1 || docs[0].ID != 2 {
		t.Errorf("docs = %v, want document 2", docs)
	}
}

func TestFailedFlushLeavesNoStaleEntry(t *testing.T) {
	engine, c := newCachedEngine(t, brokenFlushStore{newMemoryStore()})
	ctx := context.Background()

	if _, _, err := c.GetOrCompute(ctx, engine.Generation(), "пёс", document.StatusActual, search(engine, "пёс")); err != nil {
		t.Fatal(err)
	}
	if err := engine.AddDocument(ctx, 2, "пёс", document.StatusActual, nil); err != nil {
		t.Fatal(err)
	}
	docs, hit, err := c.GetOrCompute(ctx, engine.Generation(), "пёс", document.StatusActual, search(engine, "пёс"))
	if err != nil || hit {
		t.Fatalf("search after write = %v, hit %v", err, hit)
	}
	if len(docs) != 1 || docs[0].ID != 2 {
		t.Errorf("docs = %v, want document 2", docs)
	}
}
