package tokenizer

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// AudienceSession marks tokens minted for the admin session cookie.
const AudienceSession = "admin:session"

// JWTTokenizer implements the Tokenizer interface using ES256-signed JWTs.
// Tokens are tamper-evident capabilities: the wallet, expiry and JTI are
// covered by the signature, so the cookie value can never be forged or
// edited client-side.
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// SessionToToken converts a Session to a signed JWT string
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Wallet,
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// TokenToSession parses and verifies a JWT string and returns the session
// it encodes. Structural problems, a bad signature, a wrong audience and an
// expired token all surface as core errors, never as a panic.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		if token != nil && token.Claims != nil {
			// Distinguish expiry so callers can report it precisely.
			if exp, expErr := token.Claims.GetExpirationTime(); expErr == nil && exp != nil && exp.Time.Before(time.Now()) {
				return nil, core.ErrTokenExpired
			}
		}
		return nil, core.ErrInvalidToken
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, core.ErrInvalidToken
	}

	session := &core.Session{
		ID:        claims.ID,
		Wallet:    claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	return session, nil
}
