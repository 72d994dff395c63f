package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
)

// EventWriter is the subset of *kafka.Producer the collector needs.
type EventWriter interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

type CollectorOptions struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

// Collector accepts events without blocking the request path. A single
// goroutine feeds the aggregator and flushes batches to the writer when a
// batch fills or the flush interval elapses. Either sink may be nil.
type Collector struct {
	writer        EventWriter
	aggregator    *Aggregator
	eventCh       chan SearchEvent
	batchSize     int
	flushInterval time.Duration
	dropped       atomic.Int64
	closeMu       sync.RWMutex
	closed        bool
	done          chan struct{}
	logger        *slog.Logger
}

func NewCollector(writer EventWriter, aggregator *Aggregator, opts CollectorOptions) *Collector {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 10000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}
	return &Collector{
		writer:        writer,
		aggregator:    aggregator,
		eventCh:       make(chan SearchEvent, opts.BufferSize),
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
		done:          make(chan struct{}),
		logger:        slog.Default().With("component", "analytics-collector"),
	}
}

// Start launches the collection loop. It returns immediately; the loop
// exits when ctx is cancelled or Close is called, flushing what remains.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track enqueues event, dropping it when the buffer is full or the
// collector is closed.
func (c *Collector) Track(event SearchEvent) {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.dropped.Add(1)
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Dropped returns how many events were discarded because the buffer was
// full.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting events and waits for the final flush.
func (c *Collector) Close() {
	c.closeMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.closeMu.Unlock()
	<-c.done
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.batchSize)
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.finalFlush(batch)
				return
			}
			batch = c.add(ctx, batch, event)
		case <-ticker.C:
			batch = c.flush(ctx, batch)
		case <-ctx.Done():
			c.drain(batch)
			return
		}
	}
}

// drain records whatever is already buffered, then flushes.
func (c *Collector) drain(batch []kafka.Event) {
loop:
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				break loop
			}
			batch = c.add(context.Background(), batch, event)
		default:
			break loop
		}
	}
	c.finalFlush(batch)
}

func (c *Collector) add(ctx context.Context, batch []kafka.Event, event SearchEvent) []kafka.Event {
	if c.aggregator != nil {
		c.aggregator.Record(event)
	}
	if c.writer == nil {
		return batch
	}
	batch = append(batch, kafka.Event{Key: event.Query, Value: event})
	if len(batch) >= c.batchSize {
		return c.flush(ctx, batch)
	}
	return batch
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if len(batch) == 0 || c.writer == nil {
		return batch
	}
	if err := c.writer.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("failed to publish analytics batch", "events", len(batch), "error", err)
	} else {
		c.logger.Debug("analytics batch flushed", "events", len(batch))
	}
	return batch[:0]
}

func (c *Collector) finalFlush(batch []kafka.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.flush(ctx, batch)
}
