package middleware

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

const (
	HeaderCallerAddress = "X-Caller-Address"
	ContextCallerKey    = "caller"
)

// CallerMiddleware extracts the admin caller principal from the request
// header. Whether that principal may actually mutate policy is decided by
// the authorization registry downstream.
func CallerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderCallerAddress)
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + HeaderCallerAddress + " header"})
			c.Abort()
			return
		}
		if !common.IsHexAddress(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid caller address"})
			c.Abort()
			return
		}
		c.Set(ContextCallerKey, common.HexToAddress(raw))
		c.Next()
	}
}

// Caller returns the principal set by CallerMiddleware.
func Caller(c *gin.Context) (common.Address, bool) {
	val, ok := c.Get(ContextCallerKey)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := val.(common.Address)
	return addr, ok
}
