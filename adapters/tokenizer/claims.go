package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by an admin session token. The
// wallet rides in the standard subject claim.
type SessionClaims struct {
	jwt.RegisteredClaims
}
