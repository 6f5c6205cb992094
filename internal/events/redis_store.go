package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RedisStreamStore appends events to a capped Redis stream.
type RedisStreamStore struct {
	Client *redis.Client
	Stream string
	MaxLen int64
}

func (s RedisStreamStore) stream() string {
	if s.Stream == "" {
		return "events:orders"
	}
	return s.Stream
}

// Append writes the event to the stream and returns it with its id set.
func (s RedisStreamStore) Append(ctx context.Context, ev Event) (Event, error) {
	if s.Client == nil {
		return Event{}, errors.New("event stream not configured")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	maxLen := s.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	err := s.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream(),
		MaxLen: maxLen,
		Approx: true,
		Values: map[string]any{
			"id":           ev.ID,
			"topic":        ev.Topic,
			"aggregate_id": ev.AggregateID,
			"payload":      string(ev.Payload),
			"occurred_at":  ev.OccurredAt.UnixMilli(),
		},
	}).Err()
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}
