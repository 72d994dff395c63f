package cache

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

type breakerStore struct {
	store Store
	cb    *resilience.CircuitBreaker
}

// WithBreaker guards reads and writes on store with cb so an unhealthy
// Redis costs searches nothing once the circuit opens. A missing key is
// not a failure. FlushByPattern always goes through: skipping an
// invalidation would leave stale results behind after recovery.
func WithBreaker(store Store, cb *resilience.CircuitBreaker) Store {
	return &breakerStore{store: store, cb: cb}
}

func (b *breakerStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := b.cb.Execute(func() error {
		var err error
		value, err = b.store.Get(ctx, key)
		return err
	}, isStoreFailure)
	return value, err
}

func (b *breakerStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return b.cb.Execute(func() error {
		return b.store.Set(ctx, key, value, ttl)
	}, isStoreFailure)
}

func (b *breakerStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	return b.store.FlushByPattern(ctx, pattern)
}

func isStoreFailure(err error) bool {
	return !redis.IsNilError(err)
}
