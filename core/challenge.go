package core

import "time"

// Challenge is a single-use authentication nonce issued to a prospective
// admin. The wallet signs the nonce value with its private key and submits
// the signature during login.
type Challenge struct {
	Nonce     string    // Hex-encoded random value, 256 bits of entropy
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
	Consumed  bool      // Whether the challenge has already been claimed
}

// ExpiredAt reports whether the challenge is past its expiry at the given
// moment.
func (c Challenge) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
