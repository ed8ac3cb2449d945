package core

import "errors"

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExpired  = errors.New("challenge has expired")
	ErrChallengeConsumed = errors.New("challenge has already been used")

	ErrInvalidSignature = errors.New("invalid signature")
	ErrNotWhitelisted   = errors.New("wallet is not an admin")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenRevoked     = errors.New("token has been revoked")

	ErrShopNotFound      = errors.New("shop not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrConflictingState  = errors.New("entity status changed concurrently")
	ErrInvalidTransition = errors.New("status transition not permitted")
	ErrForbidden         = errors.New("actor is not permitted to modify this entity")
	ErrMissingReason     = errors.New("a non-empty reason is required")
)
