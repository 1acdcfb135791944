package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dooonda/ledger/internal/domain"
)

// DefaultStream is the Redis stream ledger events are appended to.
const DefaultStream = "dooonda:events"

// StreamPublisher appends events to a capped Redis stream.
type StreamPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewStreamPublisher creates a StreamPublisher. maxLen bounds the stream
// approximately; zero leaves it unbounded.
func NewStreamPublisher(client redis.UniversalClient, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}

	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish adds event to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
			"payload":        string(payload),
		},
	}

	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	return p.client.XAdd(ctx, args).Err()
}
