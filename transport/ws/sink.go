// Package ws is the real-time channel: one websocket per connected user,
// with a buffered sink decoupling event producers from the socket writer.
package ws

import (
	"context"
	"log/slog"
	"time"

	"dm-lab/domain/event"
)

// Sink is the live end of one user's connection.
// Producers (router, presence worker) hand events to the channel; the
// connection's write pump drains it towards the socket.
type Sink struct {
	Events          chan event.DomainEvent
	log             *slog.Logger
	deliveryTimeout time.Duration
}

func NewSink(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *Sink {
	return &Sink{
		Events:          make(chan event.DomainEvent, bufferSize),
		log:             log,
		deliveryTimeout: deliveryTimeout,
	}
}

// Consume redirects the event through the owner of the channel.
// It blocks at most deliveryTimeout: a connection that cannot absorb its
// backlog loses the event instead of stalling the producer.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.deliveryTimeout):
		s.log.Debug("Connection backpressure, event dropped", "event", e.EventName())
		return nil
	}
}
