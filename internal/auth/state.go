// File: internal/auth/state.go
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/platform/crypto"
	"bookmarked_backend/internal/session"

	"github.com/gin-gonic/gin"
)

var errStateMismatch = errors.New("oauth state mismatch")

func generateAndSetOAuthState(c *gin.Context, cfg *config.Config) (string, error) {
	state, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	session.SetCookie(c, cfg, cfg.OAuthStateCookieName, state, cfg.OAuthCookieMaxAgeMinutes*60)
	return state, nil
}

// verifyOAuthState compares the returned state with the cookie and deletes
// the cookie either way, so a state is good for one callback only.
func verifyOAuthState(c *gin.Context, cfg *config.Config, received string) error {
	stored, err := c.Cookie(cfg.OAuthStateCookieName)
	if err != nil {
		return fmt.Errorf("%s cookie not found: %w", cfg.OAuthStateCookieName, err)
	}
	session.ClearCookie(c, cfg, cfg.OAuthStateCookieName)

	if stored == "" || received == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(received)) != 1 {
		return errStateMismatch
	}
	return nil
}
