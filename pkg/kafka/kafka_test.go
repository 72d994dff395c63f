package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	cancel    context.CancelFunc
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		f.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &fakeReader{
		cancel: cancel,
		messages: []kafka.Message{
			{Offset: 1, Value: []byte("ok")},
			{Offset: 2, Value: []byte("fail")},
			{Offset: 3, Value: []byte("ok")},
		},
	}
	var handled []string
	c := newConsumer(r, "document-ingest", func(_ context.Context, _ []byte, value []byte) error {
		handled = append(handled, string(value))
		if string(value) == "fail" {
			return errors.New("boom")
		}
		return nil
	})
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(handled) != 3 {
		t.Errorf("handled %d messages, want 3", len(handled))
	}
	if len(r.committed) != 2 || r.committed[0] != 1 || r.committed[1] != 3 {
		t.Errorf("committed offsets %v, want [1 3]", r.committed)
	}
	if !r.closed {
		t.Error("reader not closed on stop")
	}
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestProducerPublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "search-events")
	err := p.PublishBatch(context.Background(), []Event{
		{Key: "1", Value: map[string]int{"id": 1}},
		{Key: "2", Value: map[string]int{"id": 2}},
	})
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	if len(w.messages) != 2 || string(w.messages[1].Key) != "2" {
		t.Fatalf("unexpected messages %+v", w.messages)
	}
	decoded, err := DecodeJSON[map[string]int](w.messages[0].Value)
	if err != nil || decoded["id"] != 1 {
		t.Errorf("DecodeJSON = %v, %v", decoded, err)
	}
}

func TestProducerErrors(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("broker down")}, "t")
	if err := p.Publish(context.Background(), Event{Key: "k", Value: 1}); err == nil {
		t.Error("expected write error")
	}
	p = newProducer(&fakeWriter{}, "t")
	if err := p.Publish(context.Background(), Event{Key: "k", Value: make(chan int)}); err == nil {
		t.Error("expected marshal error")
	}
	if err := p.PublishBatch(context.Background(), nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
}

func TestDecodeJSONError(t *testing.T) {
	if _, err := DecodeJSON[map[string]any]([]byte("{")); err == nil {
		t.Error("expected decode error")
	}
	var syntax *json.SyntaxError
	_, err := DecodeJSON[int]([]byte("x"))
	if !errors.As(err, &syntax) {
		t.Errorf("expected wrapped json.SyntaxError, got %v", err)
	}
}
