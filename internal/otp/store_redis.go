package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"harambee/pkg/platform/sentinel"
)

const challengeKeyPrefix = "otp:"

// RedisStore keeps challenges in Redis with native TTL expiry. Single-use is
// enforced with GETDEL: the read and the invalidation are one command, so a
// code can be consumed exactly once no matter how many verifies race.
//
// Keying by identifier and code means multiple live codes per identifier
// coexist naturally, same as the relational backend.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed challenge store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func challengeKey(identifier, code string) string {
	return challengeKeyPrefix + identifier + ":" + code
}

func (s *RedisStore) Create(ctx context.Context, c *Challenge) error {
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("challenge already expired: %w", sentinel.ErrExpired)
	}
	if err := s.client.Set(ctx, challengeKey(c.Identifier, c.Code), c.ID, ttl).Err(); err != nil {
		return fmt.Errorf("store otp challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, identifier, code string, _ time.Time) (*Challenge, error) {
	id, err := s.client.GetDel(ctx, challengeKey(identifier, code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("no live challenge for identifier: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume otp challenge: %w", err)
	}
	return &Challenge{
		ID:         id,
		Identifier: identifier,
		Code:       code,
		Verified:   true,
	}, nil
}
