// Package session attributes requests to an identity across the OAuth
// redirect and everything after it. Two issuers share one interface: a
// server-side session behind a cookie, and a self-contained signed token for
// clients that cannot keep third-party cookies.
package session

import (
	"errors"
	"fmt"
	"time"

	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	// ErrInvalidSession is returned when a presented session or token cannot be trusted.
	ErrInvalidSession = errors.New("session: invalid or expired credentials")
	// ErrRevoked is returned for a token that was cleared by logout.
	ErrRevoked = errors.New("session: token revoked")
)

// Issuer establishes, recovers and clears the identity attached to requests.
type Issuer interface {
	// Mode names the mechanism, one of config.SessionModeCookie or config.SessionModeToken.
	Mode() string
	// Issue attaches claim to the client. Token-based issuers return the
	// token to hand back; cookie-based issuers return "".
	Issue(c *gin.Context, claim identity.Claim) (string, error)
	// Read returns the claim presented with the request, or (nil, nil) when
	// the request carries none.
	Read(c *gin.Context) (*identity.Claim, error)
	// Clear forgets whatever the request presented.
	Clear(c *gin.Context) error
}

// NewIssuer picks the issuer for SESSION_MODE.
func NewIssuer(cfg *config.Config, store Store, blocklist TokenBlocklistService, logger *zap.Logger) (Issuer, error) {
	switch cfg.SessionMode {
	case config.SessionModeToken:
		return NewTokenIssuer(cfg, blocklist, logger)
	case config.SessionModeCookie:
		return NewCookieIssuer(cfg, store, logger), nil
	default:
		return nil, fmt.Errorf("unknown session mode %q", cfg.SessionMode)
	}
}

// lifetime returns how long a claim stays valid. Staged identities are only
// meant to survive the onboarding form.
func lifetime(cfg *config.Config, claim identity.Claim) time.Duration {
	if claim.Kind == identity.KindStaged {
		return cfg.StagedTTL
	}
	return cfg.SessionTTL
}
