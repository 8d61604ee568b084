package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRepo keeps live login sessions in Redis under session:<sid>.
// Deleting the key revokes every token minted for that session.
type SessionRepo struct {
	redis *redis.Client
}

func NewSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{redis: client}
}

func SessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (r *SessionRepo) Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	return r.redis.Set(ctx, SessionKey(sessionID), userID.String(), ttl).Err()
}

func (r *SessionRepo) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.redis.Exists(ctx, SessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	return r.redis.Del(ctx, SessionKey(sessionID)).Err()
}
