package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Broadcaster decouples request handling from event delivery. Handlers call
// Emit after a successful transition; Run pumps the buffer to the publisher
// until the context is canceled.
type Broadcaster struct {
	publisher Publisher
	logger    *slog.Logger
	inbox     chan Event
}

func NewBroadcaster(publisher Publisher, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		publisher: publisher,
		logger:    logger,
		inbox:     make(chan Event, 256),
	}
}

// Emit queues an event for delivery. A full buffer drops the event rather
// than stalling the request path; viewers resync from the list endpoint.
func (b *Broadcaster) Emit(ctx context.Context, eventType EventType, unitCode string) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UnitCode:   unitCode,
		OccurredAt: time.Now().UTC(),
	}
	select {
	case b.inbox <- event:
	default:
		b.logger.WarnContext(ctx, "event buffer full, dropping event",
			"type", eventType,
			"unit_code", unitCode,
		)
	}
}

// Run delivers queued events until ctx is canceled. Delivery failures are
// logged, not retried; events are advisory and the board is the source of
// truth.
func (b *Broadcaster) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-b.inbox:
			if err := b.publisher.Publish(ctx, event); err != nil {
				b.logger.ErrorContext(ctx, "publish unit event failed",
					"type", event.Type,
					"unit_code", event.UnitCode,
					"error", err,
				)
			}
		}
	}
}
