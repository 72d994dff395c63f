// Package analytics collects search events, publishes them to the
// analytics topic in batches and keeps an in-process aggregate served on
// the stats endpoint.
package analytics

import "time"

type EventType string

const (
	EventSearch EventType = "search"
	EventMatch  EventType = "match"
)

// SearchEvent describes one answered search or match request.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Status    string    `json:"status,omitempty"`
	Returned  int       `json:"returned"`
	Invalid   bool      `json:"invalid,omitempty"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// ZeroResult reports a well-formed search that matched nothing.
func (e SearchEvent) ZeroResult() bool {
	return e.Type == EventSearch && !e.Invalid && e.Returned == 0
}
