package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"talktonic/internal/config"
)

// SessionIDKey is the gin context key holding the caller's session id.
const SessionIDKey = "sessionId"

// SessionMiddleware accepts a session token from the Authorization header or,
// for WebSocket upgrades, the token query parameter.
func SessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing session token"})
			return
		}
		claims, err := ParseJWT(cfg.Server.JWTSecret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}
