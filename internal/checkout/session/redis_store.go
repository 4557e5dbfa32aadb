package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the minimal client surface used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore persists sessions as JSON blobs in Redis. A positive TTL lets
// abandoned checkouts decay instead of accumulating.
type RedisStore struct {
	client    RedisClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: "session:",
		ttl:       ttl,
	}
}

func (r *RedisStore) Load(ctx context.Context, key string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", key, err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", key, err)
	}
	return &sess, nil
}

func (r *RedisStore) Save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", sess.Key, err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+sess.Key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %q: %w", sess.Key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete session %q: %w", key, err)
	}
	return nil
}
