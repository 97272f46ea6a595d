package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chat-eats-backend/internal/models"
)

// Draft is the per-conversation scratch state accumulated across chat turns
// before an order is durably created. The HeaderID is a non-owning reference:
// it is only ever used to re-fetch the cart by primary key, never as a source
// of truth for mutation decisions.
type Draft struct {
	ConversationID       string         `json:"conversation_id"`
	ClientID             int64          `json:"client_id"`
	ClientLocationID     int64          `json:"client_location_id,omitempty"`
	RestaurantID         int64          `json:"restaurant_id,omitempty"`
	RestaurantLocationID int64          `json:"restaurant_location_id,omitempty"`
	HeaderID             int64          `json:"header_id,omitempty"`
	Messages             map[string]int `json:"messages,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Store persists drafts with a TTL; abandoned conversations simply expire.
type Store interface {
	Get(ctx context.Context, conversationID string) (*Draft, error)
	Put(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, conversationID string) error
}

// RedisStore keeps one JSON document per conversation.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func draftKey(conversationID string) string {
	return "draft:" + conversationID
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) (*Draft, error) {
	data, err := s.client.Get(ctx, draftKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("session.Get: %w", err)
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("session.Get: unmarshal: %w", err)
	}
	return &draft, nil
}

func (s *RedisStore) Put(ctx context.Context, draft *Draft) error {
	draft.UpdatedAt = time.Now()
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("session.Put: marshal: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(draft.ConversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session.Put: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, draftKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("session.Delete: %w", err)
	}
	return nil
}
