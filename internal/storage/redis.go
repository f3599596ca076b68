package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xaenox/osint-chat/internal/models"
)

type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage stores each context under its own key, refreshed to ttl on
// every save.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	if client == nil {
		panic("storage: redis client cannot be nil")
	}
	return &RedisStorage{client: client, ttl: ttl}
}

func contextKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:context", conversationID)
}

func (s *RedisStorage) LoadContext(ctx context.Context, conversationID string) (models.ConversationContext, error) {
	data, err := s.client.Get(ctx, contextKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ConversationContext{}, nil
	}
	if err != nil {
		return models.ConversationContext{}, fmt.Errorf("storage: failed to load context: %w", err)
	}

	var cc models.ConversationContext
	if err := json.Unmarshal(data, &cc); err != nil {
		return models.ConversationContext{}, fmt.Errorf("storage: failed to decode context: %w", err)
	}
	return cc, nil
}

func (s *RedisStorage) SaveContext(ctx context.Context, conversationID string, cc models.ConversationContext) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal context: %w", err)
	}
	if err := s.client.Set(ctx, contextKey(conversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage: failed to persist context: %w", err)
	}
	return nil
}

func (s *RedisStorage) DeleteContext(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, contextKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("storage: failed to delete context: %w", err)
	}
	return nil
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
