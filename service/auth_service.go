package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/internal/eth"
	"github.com/bazaar-labs/gatehouse/ports"
)

// AuthService handles challenge issuance, login and session lifecycle for
// the admin trust boundary.
type AuthService struct {
	challenges ports.ChallengeStore
	sessions   ports.SessionStore
	tokenizer  ports.Tokenizer
	registry   ports.AdminRegistry
	eventPub   ports.EventPublisher

	challengeTTL time.Duration
	sessionTTL   time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	challenges ports.ChallengeStore,
	sessions ports.SessionStore,
	tokenizer ports.Tokenizer,
	registry ports.AdminRegistry,
	eventPub ports.EventPublisher,
) *AuthService {
	return &AuthService{
		challenges:   challenges,
		sessions:     sessions,
		tokenizer:    tokenizer,
		registry:     registry,
		eventPub:     eventPub,
		challengeTTL: 5 * time.Minute,
		sessionTTL:   12 * time.Hour,
	}
}

// CreateChallenge issues a new single-use login nonce and persists it so
// the consume-once invariant is enforced server-side.
func (s *AuthService) CreateChallenge(ctx context.Context) (string, error) {
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	challenge := core.Challenge{
		Nonce:     hex.EncodeToString(nonceBytes),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err := s.challenges.Save(ctx, challenge, s.challengeTTL); err != nil {
		return "", fmt.Errorf("failed to save challenge: %w", err)
	}

	return challenge.Nonce, nil
}

// Login verifies a signed challenge and issues a session token.
//
// The nonce is consumed before signature verification so that it burns on
// every attempt: a nonce can never be replayed across two verification
// attempts regardless of whether the first one succeeded.
func (s *AuthService) Login(ctx context.Context, wallet, signature, publicKey, nonce string) (string, error) {
	if err := s.challenges.Consume(ctx, nonce); err != nil {
		return "", err
	}

	if !eth.VerifySignature(wallet, signature, publicKey, nonce) {
		return "", core.ErrInvalidSignature
	}

	if !s.registry.IsAdmin(wallet) {
		return "", core.ErrNotWhitelisted
	}

	now := time.Now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Wallet:    strings.ToLower(wallet),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}

	return token, nil
}

// ValidateSession verifies a session token and returns the session it
// encodes. The token must be structurally valid, unexpired, not revoked,
// and its wallet must still be on the admin allow-list — removing a wallet
// from the registry kills its live sessions at the next privileged call.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*core.Session, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}

	revoked, err := s.sessions.IsTokenRevoked(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, core.ErrTokenRevoked
	}

	if !s.registry.IsAdmin(session.Wallet) {
		return nil, core.ErrNotWhitelisted
	}

	return session, nil
}

// Logout revokes a session token. The operation is idempotent: revoking an
// already revoked or expired session succeeds and leaves the same state.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			// Expired sessions are already unusable.
			return nil
		}
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.sessions.RevokeToken(ctx, session.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, session.Wallet, session.ID); err != nil {
			// The revocation already landed, which is the part that matters.
			fmt.Printf("Warning: Failed to publish logout event: %v\n", err)
		}
	}

	return nil
}
