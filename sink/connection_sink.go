package sink

import (
	"context"
	"log/slog"

	"dm-relay/domain/event"
)

// ConnectionSink buffers events addressed to one live connection.
// The relay pushes into it; the connection's writer goroutine drains
// it onto the wire. A full buffer means the client is not keeping up,
// and the event is dropped rather than blocking the relay; history
// still carries the message.
type ConnectionSink struct {
	Events chan event.DomainEvent
	log    *slog.Logger
}

func NewConnectionSink(log *slog.Logger, bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		Events: make(chan event.DomainEvent, bufferSize),
		log:    log,
	}
}

// Consume is called by the relay for every connection bound to the
// recipient's personal address. The connection owner takes it from here.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Warn("Connection buffer full, dropping live delivery",
			"recipient", e.Recipient())
		return nil
	}
}
