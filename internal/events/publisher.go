package events

//go:generate mockgen -destination=../session/mocks/mock_publisher.go -package=mocks . Publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Publisher fans out game notifications.
type Publisher interface {
	PublishUpdate(ctx context.Context, gameID string) error
	PublishEvent(ctx context.Context, event Event) error
}

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a Publisher backed by Redis Pub/Sub.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

// PublishUpdate signals subscribers that the game state changed.
func (p *redisPublisher) PublishUpdate(ctx context.Context, gameID string) error {
	if err := p.rdb.Publish(ctx, GameChannel(gameID), UpdatePayload).Err(); err != nil {
		return fmt.Errorf("failed to publish update for game %s: %w", gameID, err)
	}
	return nil
}

// PublishEvent publishes event on the global events channel.
func (p *redisPublisher) PublishEvent(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	if err := p.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
