package middleware

import (
	"net/http"

	"github.com/GoAMM/hookgate/internal/config"
	"github.com/gin-gonic/gin"
)

const (
	HeaderGatewayKey = "X-Gateway-Key"
)

// AuthMiddleware gates the whole surface behind the shared host key. The
// per-principal authorization of admin mutations is a separate concern and
// lives in the registry, not here.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || !cfg.Auth.RequireAPIKey {
			c.Next()
			return
		}
		if c.GetHeader(HeaderGatewayKey) != cfg.Auth.APIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
