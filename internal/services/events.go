package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"archeohub-backend/internal/models"
)

// EventPublisher fans chat lifecycle events out to a user's live sockets.
type EventPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error
}

// ChatUpdatesChannel is the Redis pub/sub channel read by the WebSocket hub.
func ChatUpdatesChannel(userID uuid.UUID) string {
	return "chat_updates:" + userID.String()
}

type RedisEventPublisher struct {
	redis *redis.Client
}

func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{redis: client}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.redis.Publish(ctx, ChatUpdatesChannel(userID), data).Err()
}
