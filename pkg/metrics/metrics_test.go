package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.DocumentsAddedTotal.Inc()
	m.QueriesTotal.WithLabelValues("find_top", OutcomeOK).Inc()
	m.DocumentsRejected.WithLabelValues("duplicate").Add(2)

	if got := testutil.ToFloat64(m.DocumentsAddedTotal); got != 1 {
		t.Errorf("documents added = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DocumentsRejected.WithLabelValues("duplicate")); got != 2 {
		t.Errorf("documents rejected = %v, want 2", got)
	}
	count, err := testutil.GatherAndCount(reg, "search_queries_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 query series, got %d", count)
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
