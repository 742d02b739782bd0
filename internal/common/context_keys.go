// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// TokenQueryParam carries a portable token on redirects back from the provider.
	TokenQueryParam = "token"
	// LoggerKey is the context key for the request-scoped logger
	LoggerKey = "logger"
	// PrincipalKey is the context key for the resolved identity.Principal
	PrincipalKey = "principal"
	// RequestIDKey is the context key for the request ID
	RequestIDKey = "requestID"
)
