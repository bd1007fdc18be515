package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hamudi896/LagerAppENV/internal/port"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
)

var _ port.IdempotencyRepository = (*RedisAdapter)(nil)

// releaseScript deletes a claim only while it still holds the claim marker, so
// a key that expired and was claimed again is left alone.
var releaseScript = redis.NewScript(`
local key = KEYS[1]
local marker = ARGV[1]

local current = redis.call('GET', key)
if current == marker then
	redis.call('DEL', key)
	return 1
end

return 0
`)

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
	marker string
}

// NewRedisAdapter claims keys for ttl; a non-positive ttl means 24h. Each
// adapter instance writes its own marker so it only releases its own claims.
func NewRedisAdapter(client *redis.Client, ttl time.Duration, marker string) *RedisAdapter {
	if ttl <= 0 {
		ttl = idempotencyKeyTTL
	}
	if marker == "" {
		marker = "1"
	}
	return &RedisAdapter{client: client, ttl: ttl, marker: marker}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, r.marker, r.ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, r.client, []string{idempotencyKeyPrefix + key}, r.marker).Err()
}
