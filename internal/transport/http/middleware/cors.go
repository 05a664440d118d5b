package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OriginAllowed reports whether origin appears in allowed.
func OriginAllowed(allowed []string, origin string) bool {
	for _, allowedOrigin := range allowed {
		if allowedOrigin == origin {
			return true
		}
	}
	return false
}

// CheckOrigin adapts the allow list for the WebSocket upgrader. Requests
// without an Origin header (curl, same-origin tools) pass.
func CheckOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || OriginAllowed(allowed, origin)
	}
}

func CORSMiddleware(allowedOrigins []string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("cors")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" {
			if !OriginAllowed(allowedOrigins, origin) {
				log.Warn("origin not in allowed list",
					zap.String("origin", origin),
					zap.Strings("allowed", allowedOrigins))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
				return
			}
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")

		// Handle preflight OPTIONS requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
