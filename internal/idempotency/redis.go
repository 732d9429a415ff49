package idempotency

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// claimScript claims the event unless it is already processing or processed.
// A failed record is overwritten, which is what allows retry after backoff.
var claimScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v == 'processing' or v == 'processed' then
  return 0
end
redis.call('SET', KEYS[1], 'processing', 'EX', ARGV[1])
return 1
`)

type RedisStore struct {
	client *redis.Client
	ttls   TTLs
}

func NewRedisStore(client *redis.Client, ttls TTLs) *RedisStore {
	return &RedisStore{client: client, ttls: ttls}
}

func key(eventID string) string {
	return fmt.Sprintf("event:%s:status", eventID)
}

func (s *RedisStore) Claim(ctx context.Context, eventID string) (bool, error) {
	n, err := claimScript.Run(ctx, s.client, []string{key(eventID)}, int(s.ttls.Processing.Seconds())).Int()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	return n == 1, nil
}

func (s *RedisStore) MarkProcessed(ctx context.Context, eventID string) error {
	return s.client.Set(ctx, key(eventID), string(StatusProcessed), s.ttls.Processed).Err()
}

func (s *RedisStore) MarkFailed(ctx context.Context, eventID string) error {
	return s.client.Set(ctx, key(eventID), string(StatusFailed), s.ttls.Failed).Err()
}

func (s *RedisStore) Status(ctx context.Context, eventID string) (Status, error) {
	v, err := s.client.Get(ctx, key(eventID)).Result()
	if errors.Is(err, redis.Nil) {
		return StatusAbsent, nil
	}
	if err != nil {
		return StatusAbsent, err
	}
	return Status(v), nil
}
