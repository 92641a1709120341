package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "statustrack:sessions:revoked:"

// RedisSet stores revoked session ids as individual keys with a TTL
// equal to the remaining token lifetime, so the set cleans itself up.
type RedisSet struct {
	rdb *redis.Client
}

func NewRedisSet(rdb *redis.Client) *RedisSet {
	return &RedisSet{rdb: rdb}
}

func (s *RedisSet) Add(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing left to revoke.
		return nil
	}
	return s.rdb.Set(ctx, redisKeyPrefix+sessionID, "1", ttl).Err()
}

func (s *RedisSet) Contains(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, redisKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
