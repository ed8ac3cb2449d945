package store

import (
	"context"
	"sync"
	"time"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// MemoryChallengeStore is an in-memory implementation of the ChallengeStore
// interface, intended for tests and single-instance deployments.
type MemoryChallengeStore struct {
	challenges map[string]core.Challenge
	mu         sync.Mutex
}

// NewMemoryChallengeStore creates a new in-memory challenge store
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		challenges: make(map[string]core.Challenge),
	}
}

// Save persists an issued challenge under its nonce value
func (s *MemoryChallengeStore) Save(ctx context.Context, challenge core.Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.Nonce] = challenge
	return nil
}

// Consume atomically claims a nonce. The mutex makes the lookup and the
// consumed-flag write a single step, so at most one caller ever succeeds
// for a given nonce.
func (s *MemoryChallengeStore) Consume(ctx context.Context, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[nonce]
	if !ok {
		return core.ErrChallengeNotFound
	}
	if challenge.Consumed {
		return core.ErrChallengeConsumed
	}
	if challenge.ExpiredAt(time.Now()) {
		delete(s.challenges, nonce)
		return core.ErrChallengeExpired
	}

	challenge.Consumed = true
	s.challenges[nonce] = challenge
	return nil
}

// MemorySessionStore is an in-memory implementation of the SessionStore
// interface tracking revoked token IDs.
type MemorySessionStore struct {
	revokedTokens map[string]time.Time
	mu            sync.RWMutex
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore() ports.SessionStore {
	return &MemorySessionStore{
		revokedTokens: make(map[string]time.Time),
	}
}

// RevokeToken marks a token as revoked until its natural expiry
func (s *MemorySessionStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry := time.Now().Add(ttl)
	s.revokedTokens[tokenID] = expiry

	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if a later revocation hasn't extended the entry
		if stored, exists := s.revokedTokens[tokenID]; exists && !stored.After(expiry) {
			delete(s.revokedTokens, tokenID)
		}
	}()

	return nil
}

// IsTokenRevoked checks if a token has been revoked
func (s *MemorySessionStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, exists := s.revokedTokens[tokenID]
	if !exists {
		return false, nil
	}

	if time.Now().After(expiry) {
		return false, nil
	}

	return true, nil
}
