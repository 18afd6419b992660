package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	"github.com/oksasatya/user-accounts-service/internal/domain/repository"
)

// SessionStore keeps one session hash per user under user:session:<id>.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(userID int64) string {
	return "user:session:" + strconv.FormatInt(userID, 10)
}

func (s *SessionStore) Save(ctx context.Context, claims entity.Claims, ttl time.Duration) error {
	key := sessionKey(claims.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    claims.UserID,
		"username":   claims.Username,
		"role":       claims.Role,
		"branch":     claims.Branch,
		"status":     string(claims.Status),
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

var _ repository.SessionStore = (*SessionStore)(nil)
