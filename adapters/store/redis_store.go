package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// RedisChallengeStore is a Redis implementation of the ChallengeStore
// interface. Single use is enforced with GETDEL, which is atomic on the
// Redis side: for a given nonce exactly one Consume call can win.
type RedisChallengeStore struct {
	client        *redis.Client
	prefix        string
	consumedGrace time.Duration
}

// NewRedisChallengeStore creates a new Redis challenge store
func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: "gatehouse:challenge:",
		// Tombstones let a second consumer be told "already used" rather
		// than "unknown" for the nonce's original lifetime.
		consumedGrace: 5 * time.Minute,
	}
}

// Save persists an issued challenge with its TTL
func (s *RedisChallengeStore) Save(ctx context.Context, challenge core.Challenge, ttl time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	key := s.prefix + challenge.Nonce
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return nil
}

// Consume atomically claims a nonce
func (s *RedisChallengeStore) Consume(ctx context.Context, nonce string) error {
	key := s.prefix + nonce

	raw, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		tombstone := s.prefix + "consumed:" + nonce
		exists, existsErr := s.client.Exists(ctx, tombstone).Result()
		if existsErr != nil {
			return fmt.Errorf("failed to check consumed marker: %w", existsErr)
		}
		if exists > 0 {
			return core.ErrChallengeConsumed
		}
		return core.ErrChallengeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}

	var challenge core.Challenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	// The key TTL normally handles expiry; this guards against clock skew
	// between issuing instances.
	if challenge.ExpiredAt(time.Now()) {
		return core.ErrChallengeExpired
	}

	tombstone := s.prefix + "consumed:" + nonce
	if err := s.client.Set(ctx, tombstone, "1", s.consumedGrace).Err(); err != nil {
		return fmt.Errorf("failed to set consumed marker: %w", err)
	}

	return nil
}

// RedisSessionStore is a Redis implementation of the SessionStore interface
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore creates a new Redis session store
func NewRedisSessionStore(client *redis.Client) ports.SessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: "gatehouse:revoked:",
	}
}

// RevokeToken marks a token as revoked in Redis
func (s *RedisSessionStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := s.prefix + tokenID

	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsTokenRevoked checks if a token is revoked in Redis
func (s *RedisSessionStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := s.prefix + tokenID

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return val > 0, nil
}
