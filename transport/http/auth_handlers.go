package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/service"
)

const sessionCookieMaxAge = int(12 * time.Hour / time.Second)

// AuthHandlers contains HTTP handlers for the admin auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Nonce issues a single-use login challenge
func (h *AuthHandlers) Nonce(c *gin.Context) {
	nonce, err := h.authService.CreateChallenge(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Login verifies a signed challenge and sets the session cookie
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Wallet    string `json:"wallet" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		PublicKey string `json:"publicKey" binding:"required"`
		Nonce     string `json:"nonce" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Wallet, req.Signature, req.PublicKey, req.Nonce)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "authentication failed"

		switch err {
		case core.ErrChallengeNotFound, core.ErrChallengeExpired, core.ErrChallengeConsumed:
			statusCode = http.StatusUnauthorized
			errorMsg = "invalid or expired nonce"
		case core.ErrInvalidSignature:
			statusCode = http.StatusUnauthorized
			errorMsg = "invalid signature"
		case core.ErrNotWhitelisted:
			statusCode = http.StatusForbidden
			errorMsg = "wallet is not an admin"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.SetCookie(SessionCookieName, token, sessionCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout revokes the session and clears the cookie. Logging out without a
// session, or twice, succeeds both times.
func (h *AuthHandlers) Logout(c *gin.Context) {
	token, err := c.Cookie(SessionCookieName)
	if err == nil && token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil && err != core.ErrInvalidToken {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to logout"})
			return
		}
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the wallet behind the authenticated session
func (h *AuthHandlers) Me(c *gin.Context) {
	wallet, exists := c.Get("adminWallet")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}
