package events

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("event queue is full")

type Publisher interface {
	PublishSessionCreated(ctx context.Context, e SessionCreated) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSessionCreated(context.Context, SessionCreated) error {
	return nil
}
