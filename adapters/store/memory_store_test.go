package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bazaar-labs/gatehouse/core"
)

func saveChallenge(t *testing.T, s *MemoryChallengeStore, nonce string, ttl time.Duration) {
	t.Helper()

	now := time.Now()
	err := s.Save(context.Background(), core.Challenge{
		Nonce:     nonce,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, ttl)
	require.NoError(t, err)
}

func TestChallengeConsumeOnce(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	saveChallenge(t, s, "nonce-1", time.Minute)

	require.NoError(t, s.Consume(ctx, "nonce-1"))
	require.ErrorIs(t, s.Consume(ctx, "nonce-1"), core.ErrChallengeConsumed)
}

func TestChallengeConsumeUnknown(t *testing.T) {
	s := NewMemoryChallengeStore()

	err := s.Consume(context.Background(), "never-issued")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestChallengeConsumeExpired(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	saveChallenge(t, s, "stale", -time.Second)

	require.ErrorIs(t, s.Consume(ctx, "stale"), core.ErrChallengeExpired)
	// The expired entry is dropped, so a retry reads as unknown.
	require.ErrorIs(t, s.Consume(ctx, "stale"), core.ErrChallengeNotFound)
}

func TestChallengeConcurrentConsume(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	saveChallenge(t, s, "contested", time.Minute)

	const callers = 32

	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Consume(ctx, "contested")
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, core.ErrChallengeConsumed)
		}
	}

	require.Equal(t, 1, successes, "exactly one caller may consume the nonce")
}

func TestSessionStoreRevocation(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err = s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// Revoking again is idempotent
	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err = s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestSessionStoreRevocationExpires(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, s.RevokeToken(ctx, "short", 10*time.Millisecond))

	require.Eventually(t, func() bool {
		revoked, err := s.IsTokenRevoked(ctx, "short")
		return err == nil && !revoked
	}, time.Second, 10*time.Millisecond)
}
