package sink

import (
	"context"
	"direct-chat/domain/event"
	"direct-chat/errors"
)

// ConnectionSink is the buffered mailbox of one websocket connection.
// The fan-out fills it, the connection writer drains it.
type ConnectionSink struct {
	Events chan event.DomainEvent
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the fan-out.
// It never waits for a slow client: a full mailbox drops the event.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case s.Events <- e:
		return nil
	default:
		return errors.ErrSinkFull
	}
}
