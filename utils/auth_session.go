// File: estuary/utils/auth_session.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AuthSession links a wizard API token to the upstream Estuary credentials.
type AuthSession struct {
	PractitionerID string    `json:"practitionerId"`
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	APIToken       string    `json:"apiToken"`
	CreatedAt      time.Time `json:"createdAt"`
	LastUpdatedAt  time.Time `json:"lastUpdatedAt"`
}

// SaveAuthSession saves the authentication session in Redis with a TTL.
func SaveAuthSession(ctx context.Context, client *redis.Client, sessionID string, session AuthSession, ttl time.Duration) error {
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal auth session: %w", err)
	}
	if err := client.Set(ctx, AuthSessionPrefix+sessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	return nil
}

// GetAuthSession retrieves the authentication session from Redis.
func GetAuthSession(ctx context.Context, client *redis.Client, sessionID string) (*AuthSession, error) {
	data, err := client.Get(ctx, AuthSessionPrefix+sessionID).Result()
	if err != nil {
		return nil, err
	}
	var session AuthSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth session: %w", err)
	}
	return &session, nil
}

// DeleteAuthSession removes an authentication session from Redis.
func DeleteAuthSession(ctx context.Context, client *redis.Client, sessionID string) error {
	return client.Del(ctx, AuthSessionPrefix+sessionID).Err()
}

// RedisAuthSessions stores auth sessions with a sliding expiry.
type RedisAuthSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAuthSessions(client *redis.Client, ttl time.Duration) *RedisAuthSessions {
	return &RedisAuthSessions{client: client, ttl: ttl}
}

func (s *RedisAuthSessions) Save(ctx context.Context, sessionID string, session AuthSession) error {
	return SaveAuthSession(ctx, s.client, sessionID, session, s.ttl)
}

// Get loads a session and pushes its expiry out by the configured TTL.
func (s *RedisAuthSessions) Get(ctx context.Context, sessionID string) (*AuthSession, error) {
	session, err := GetAuthSession(ctx, s.client, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.client.Expire(ctx, AuthSessionPrefix+sessionID, s.ttl).Err(); err != nil {
		GetLogger().Warn("Failed to refresh auth session TTL", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return session, nil
}

func (s *RedisAuthSessions) Delete(ctx context.Context, sessionID string) error {
	return DeleteAuthSession(ctx, s.client, sessionID)
}
