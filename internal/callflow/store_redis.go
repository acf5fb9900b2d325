package callflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "callflow:session:"
	// Sessions outlive the call so operators can inspect how it ended.
	sessionTTL = 24 * time.Hour
)

// RedisSessionStore persists call sessions in Redis so any engine instance
// can serve the next turn of an in-flight call.
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore creates a session store backed by Redis.
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("session store: get %s: %w", id, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session store: unmarshal %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session store: session id required")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session store: marshal %s: %w", sess.ID, err)
	}
	return s.rdb.Set(ctx, sessionKey(sess.ID), data, sessionTTL).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}
