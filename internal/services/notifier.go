package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/models"
)

const publishTimeout = 2 * time.Second

// SessionChannel is the pub/sub channel carrying one session's updates.
func SessionChannel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session_updates:%s", sessionID.String())
}

// RedisNotifier publishes slot transitions for the websocket hub to fan out.
type RedisNotifier struct {
	redis *redis.Client
}

func NewRedisNotifier(redisClient *redis.Client) *RedisNotifier {
	return &RedisNotifier{redis: redisClient}
}

func (n *RedisNotifier) SlotChanged(ctx context.Context, update models.SlotUpdate) {
	n.PublishUpdate(ctx, update.SessionID, models.WSMessage{Type: "slot_update", Payload: update})
}

// PublishUpdate sends a WebSocket update via Redis pub/sub
func (n *RedisNotifier) PublishUpdate(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to encode websocket message", "type", msg.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.redis.Publish(ctx, SessionChannel(sessionID), string(data)).Err(); err != nil {
		logger.Warn("failed to publish session update", "session_id", sessionID, "error", err)
	}
}
