// File: internal/session/cookie_issuer.go
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/platform/crypto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieIssuer keeps claims in a server-side Store and gives the browser only
// an opaque session ID.
type CookieIssuer struct {
	store  Store
	cfg    *config.Config
	logger *zap.Logger
}

// NewCookieIssuer creates a CookieIssuer.
func NewCookieIssuer(cfg *config.Config, store Store, logger *zap.Logger) *CookieIssuer {
	return &CookieIssuer{store: store, cfg: cfg, logger: logger.Named("CookieIssuer")}
}

func (i *CookieIssuer) Mode() string { return config.SessionModeCookie }

// Issue stores claim under a fresh session ID. Any session the request already
// carried is dropped so a login or onboarding always rotates the ID.
func (i *CookieIssuer) Issue(c *gin.Context, claim identity.Claim) (string, error) {
	data, err := json.Marshal(claim)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	id, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	ttl := lifetime(i.cfg, claim)
	if err := i.store.Save(c.Request.Context(), id, data, ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	if old, err := c.Cookie(i.cfg.SessionCookieName); err == nil && old != "" {
		if err := i.store.Delete(c.Request.Context(), old); err != nil {
			i.logger.Warn("Failed to drop previous session", zap.Error(err))
		}
	}

	SetCookie(c, i.cfg, i.cfg.SessionCookieName, id, int(ttl.Seconds()))
	i.logger.Debug("Session issued", zap.String("kind", string(claim.Kind)))
	return "", nil
}

func (i *CookieIssuer) Read(c *gin.Context) (*identity.Claim, error) {
	id, err := c.Cookie(i.cfg.SessionCookieName)
	if err != nil || id == "" {
		return nil, nil
	}

	data, err := i.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var claim identity.Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, ErrInvalidSession
	}
	if !claim.Valid() {
		return nil, ErrInvalidSession
	}
	return &claim, nil
}

func (i *CookieIssuer) Clear(c *gin.Context) error {
	defer ClearCookie(c, i.cfg, i.cfg.SessionCookieName)

	id, err := c.Cookie(i.cfg.SessionCookieName)
	if err != nil || id == "" {
		return nil
	}
	if err := i.store.Delete(c.Request.Context(), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
