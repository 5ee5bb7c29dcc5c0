package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps pending login intents in Redis so multiple instances can
// share the same pending-intent space. TTL enforcement is delegated to Redis;
// GETDEL makes consumption atomic across instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed intent store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "login_intent:",
	}
}

func (r *RedisStore) key(state string) string {
	return r.prefix + state
}

func (r *RedisStore) Put(ctx context.Context, it Intent) error {
	if it.State == "" {
		return fmt.Errorf("intent: missing state")
	}

	ttl := time.Until(it.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("intent: expires_at must be in the future")
	}

	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("intent: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(it.State), data, ttl).Err()
}

func (r *RedisStore) Consume(ctx context.Context, state string) (Intent, bool, error) {
	val, err := r.client.GetDel(ctx, r.key(state)).Result()
	if err == redis.Nil {
		return Intent{}, false, nil
	}
	if err != nil {
		return Intent{}, false, err
	}

	var it Intent
	if err := json.Unmarshal([]byte(val), &it); err != nil {
		return Intent{}, false, fmt.Errorf("intent: failed to unmarshal: %w", err)
	}

	return it, true, nil
}
