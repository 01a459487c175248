package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	defaultQueueSize  = 256
	defaultBatchSize  = 50
	defaultFlushEvery = time.Second
	drainTimeout      = 5 * time.Second
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues events in memory and writes them in batches from Run,
// so request handlers never wait on the broker.
type KafkaPublisher struct {
	writer     MessageWriter
	queue      chan kafka.Message
	batchSize  int
	flushEvery time.Duration
	log        logrus.FieldLogger
}

func NewKafkaPublisher(topic string, log logrus.FieldLogger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(w, log)
}

func NewKafkaPublisherWithWriter(w MessageWriter, log logrus.FieldLogger) *KafkaPublisher {
	if log == nil {
		log = logger.Discard()
	}
	return &KafkaPublisher{
		writer:     w,
		queue:      make(chan kafka.Message, defaultQueueSize),
		batchSize:  defaultBatchSize,
		flushEvery: defaultFlushEvery,
		log:        logger.Component(log, "events"),
	}
}

func (p *KafkaPublisher) PublishSessionCreated(_ context.Context, e SessionCreated) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventSessionCreated)},
			{Key: "event_id", Value: []byte(e.EventID)},
		},
	}

	select {
	case p.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run writes queued events until ctx is done, then flushes what is left.
func (p *KafkaPublisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.flushEvery)
	defer ticker.Stop()

	batch := make([]kafka.Message, 0, p.batchSize)
	for {
		select {
		case msg := <-p.queue:
			batch = append(batch, msg)
			if len(batch) >= p.batchSize {
				batch = p.flush(ctx, batch)
			}
		case <-ticker.C:
			batch = p.flush(ctx, batch)
		case <-ctx.Done():
			p.drain(batch)
			return
		}
	}
}

func (p *KafkaPublisher) drain(batch []kafka.Message) {
	for {
		select {
		case msg := <-p.queue:
			batch = append(batch, msg)
		default:
			ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			p.flush(ctx, batch)
			cancel()
			return
		}
	}
}

func (p *KafkaPublisher) flush(ctx context.Context, batch []kafka.Message) []kafka.Message {
	if len(batch) == 0 {
		return batch
	}
	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		p.log.WithError(err).WithField("count", len(batch)).Error("failed to publish events")
	} else {
		p.log.WithField("count", len(batch)).Debug("events published")
	}
	return batch[:0]
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
