package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/service"
)

// SessionCookieName is the cookie carrying the admin session capability.
const SessionCookieName = "admin_session"

// AuthMiddleware gates admin routes on a valid session cookie. Presence of
// the cookie is not authorization by itself: the token is cryptographically
// verified, checked against the revocation store, and its wallet re-checked
// against the registry on every request.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		session, err := authService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			switch err {
			case core.ErrTokenExpired:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			case core.ErrNotWhitelisted:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "wallet is no longer an admin"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			}
			return
		}

		c.Set("adminWallet", session.Wallet)

		c.Next()
	}
}
