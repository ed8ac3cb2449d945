package core

import "time"

// Session represents an authenticated admin session. The token presented by
// the client is a signed capability; the session carries its decoded state.
type Session struct {
	ID        string    // Unique session identifier (token JTI)
	Wallet    string    // Wallet address of the admin, lowercase
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}
