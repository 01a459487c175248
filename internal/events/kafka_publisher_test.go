package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockWriter) Messages() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.msgs...)
}

func testEvent(id string) SessionCreated {
	return NewSessionCreated(id, "rose", 1, 3999, "eur", time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC))
}

func TestPublish_WritesOnFlush(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisherWithWriter(w, nil)
	p.flushEvery = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.NoError(t, p.PublishSessionCreated(ctx, testEvent("cs_1")))

	assert.Eventually(t, func() bool { return len(w.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	msg := w.Messages()[0]
	assert.Equal(t, "cs_1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventSessionCreated, string(msg.Headers[0].Value))

	var got SessionCreated
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "rose", got.Color)
	assert.Equal(t, int64(3999), got.AmountTotal)
	assert.NotEmpty(t, got.EventID)
}

func TestRun_DrainsQueueOnShutdown(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisherWithWriter(w, nil)
	p.flushEvery = time.Hour

	require.NoError(t, p.PublishSessionCreated(context.Background(), testEvent("cs_1")))
	require.NoError(t, p.PublishSessionCreated(context.Background(), testEvent("cs_2")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)

	assert.Len(t, w.Messages(), 2)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublish_QueueFull(t *testing.T) {
	p := NewKafkaPublisherWithWriter(&mockWriter{}, nil)
	p.queue = make(chan kafka.Message, 1)

	require.NoError(t, p.PublishSessionCreated(context.Background(), testEvent("cs_1")))
	assert.ErrorIs(t, p.PublishSessionCreated(context.Background(), testEvent("cs_2")), ErrQueueFull)
}

func TestFlush_WriterErrorIsLoggedAndBatchDropped(t *testing.T) {
	w := &mockWriter{err: errors.New("broker unreachable")}
	p := NewKafkaPublisherWithWriter(w, nil)

	batch := p.flush(context.Background(), []kafka.Message{{Key: []byte("cs_1")}})
	assert.Empty(t, batch)
	assert.Empty(t, w.Messages())
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishSessionCreated(context.Background(), testEvent("cs_1")))
}
