// File: internal/common/context_helpers.go
package common

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetTokenFromContext retrieves the bearer token from the Authorization header,
// falling back to the token query parameter used on redirects.
// Returns an empty string if not found.
func GetTokenFromContext(c *gin.Context) string {
	if authHeader := c.GetHeader(AuthorizationHeader); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], AuthorizationTypeBearer) {
			return parts[1]
		}
		return ""
	}
	return c.Query(TokenQueryParam)
}

// LoggerFromContext returns the request-scoped logger set by the logging middleware.
func LoggerFromContext(c *gin.Context) *zap.Logger {
	val, exists := c.Get(LoggerKey)
	if !exists {
		return nil
	}
	logger, _ := val.(*zap.Logger)
	return logger
}

// GetRequestID returns the request ID assigned by the logging middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
