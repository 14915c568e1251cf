package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	// Key prefixes for Redis
	sessionPrefix      = "config-session:"
	sessionOwnerPrefix = "config-session:owner:"
)

// SessionStore implements driven.SessionStore using Redis.
// Sessions use Redis TTL for automatic expiration; nothing here is a
// durable record, a restart with persistence disabled just loses the
// in-progress editing state.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save stores a session with TTL based on ExpiresAt
func (s *SessionStore) Save(ctx context.Context, session *domain.ConfigSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// Session already expired, don't save
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()

	// Store session by ID
	pipe.Set(ctx, sessionPrefix+session.ID, data, ttl)

	// Add to owner's session set
	pipe.SAdd(ctx, sessionOwnerPrefix+session.OwnerID, session.ID)
	pipe.Expire(ctx, sessionOwnerPrefix+session.OwnerID, 30*24*time.Hour)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.ConfigSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.ConfigSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Delete deletes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err == domain.ErrSessionNotFound {
		return nil // Already deleted
	}
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionPrefix+id)
	pipe.SRem(ctx, sessionOwnerPrefix+session.OwnerID, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListByOwner lists the live session IDs owned by the editor.
// Expired entries are pruned from the owner set as a side effect.
func (s *SessionStore) ListByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, sessionOwnerPrefix+ownerID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get owner sessions: %w", err)
	}

	live := make([]string, 0, len(ids))
	var expired []string

	for _, id := range ids {
		exists, err := s.client.Exists(ctx, sessionPrefix+id).Result()
		if err != nil {
			return nil, err
		}
		if exists == 0 {
			expired = append(expired, id)
			continue
		}
		live = append(live, id)
	}

	if len(expired) > 0 {
		s.client.SRem(ctx, sessionOwnerPrefix+ownerID, expired)
	}

	return live, nil
}
