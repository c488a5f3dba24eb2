package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"talktonic/internal/chat"
)

const sessionKeyFmt = "session:%s"

// SessionStore keeps session contexts in Redis as JSON. Every save refreshes the TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, id string) (*chat.Session, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(sessionKeyFmt, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, chat.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var sess chat.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *chat.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	return s.rdb.Set(ctx, fmt.Sprintf(sessionKeyFmt, sess.ID), raw, s.ttl).Err()
}

// Count returns the number of live session keys.
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	var cursor uint64
	n := 0
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, "session:*", 100).Result()
		if err != nil {
			return 0, err
		}
		n += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	return n, nil
}
