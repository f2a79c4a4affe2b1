package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/icedfool/rpi-ds-game/pkg/models"
	"github.com/redis/go-redis/v9"
)

// StreamPublisher publishes player events to a Redis stream
type StreamPublisher struct {
	redis  *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher creates a new stream publisher. maxLen <= 0 leaves the
// stream untrimmed.
func NewStreamPublisher(redisClient *redis.Client, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		redis:  redisClient,
		stream: stream,
		maxLen: maxLen,
	}
}

// PlayerUpdated publishes one event; it satisfies session.Observer
func (p *StreamPublisher) PlayerUpdated(ctx context.Context, event models.PlayerEvent) error {
	args, err := buildXAddArgs(p.stream, p.maxLen, event)
	if err != nil {
		return err
	}

	if err := p.redis.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("error publishing to stream %s: %w", p.stream, err)
	}

	return nil
}

// buildXAddArgs flattens the routing fields next to the JSON payload so
// consumers can filter without decoding it.
func buildXAddArgs(stream string, maxLen int64, event models.PlayerEvent) (*redis.XAddArgs, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("error marshaling player event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":     string(data),
			"event_id": event.EventID,
			"player":   event.Player,
			"action":   event.Action,
			"grade":    event.State.CurrentGrade,
		},
	}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}

	return args, nil
}
