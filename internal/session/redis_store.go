package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"adventure-server/internal/models"
)

// RedisStore persists sessions as JSON documents with a sliding TTL, so
// abandoned games expire on their own. Every Get and Put refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionStore"),
	}
}

func sessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("adventure_session:%s", sessionID.String())
}

func (s *RedisStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.SessionState, error) {
	key := sessionKey(sessionID)
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.Debug("Session not found in Redis", zap.String("sessionID", sessionID.String()))
			return nil, models.ErrSessionNotFound
		}
		s.logger.Error("Failed to get session from redis", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var state models.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.logger.Error("Corrupted session data in redis",
			zap.Error(err),
			zap.String("sessionID", sessionID.String()),
		)
		return nil, fmt.Errorf("corrupted session data in redis for %s: %w", sessionID, err)
	}

	// Sliding expiry: an active player keeps their session alive.
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		s.logger.Warn("Failed to refresh session TTL", zap.Error(err), zap.String("key", key))
	}
	return &state, nil
}

func (s *RedisStore) Put(ctx context.Context, state *models.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", state.SessionID, err)
	}
	key := sessionKey(state.SessionID)
	s.logger.Debug("Storing session in Redis",
		zap.String("sessionID", state.SessionID.String()),
		zap.Duration("ttl", s.ttl),
	)
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to store session in redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, sessionID uuid.UUID) error {
	key := sessionKey(sessionID)
	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		s.logger.Error("Failed to delete session from redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if deleted == 0 {
		s.logger.Debug("Attempted to remove non-existent session", zap.String("sessionID", sessionID.String()))
	}
	return nil
}
