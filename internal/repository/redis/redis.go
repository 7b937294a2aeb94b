package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nfcExperience/business/experience"

	"github.com/redis/go-redis/v9"
)

// SessionRepository keeps experience sessions in Redis so the duplicate
// guard survives restarts and is shared between replicas.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ experience.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	// key format: "session:experience:{session_id}"
	return fmt.Sprintf("session:experience:%s", id)
}

func (r *SessionRepository) Get(ctx context.Context, id string) (experience.Session, bool, error) {
	val, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return experience.Session{}, false, nil
		}
		return experience.Session{}, false, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session experience.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return experience.Session{}, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return session, true, nil
}

func (r *SessionRepository) Put(ctx context.Context, session experience.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}
