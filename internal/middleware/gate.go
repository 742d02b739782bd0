// File: internal/middleware/gate.go
package middleware

import (
	"context"
	"errors"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PrincipalResolver turns a stored claim back into a live principal.
type PrincipalResolver interface {
	LoadPrincipal(ctx context.Context, claim identity.Claim) (*identity.Principal, error)
}

// Identify resolves the identity attached to the request, if any, and stores
// it under common.PrincipalKey. It never rejects a request; the Require*
// middlewares below do that.
func Identify(issuer session.Issuer, resolver PrincipalResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, err := issuer.Read(c)
		if err != nil {
			if errors.Is(err, session.ErrInvalidSession) || errors.Is(err, session.ErrRevoked) {
				logger.Debug("Ignoring untrusted credentials", zap.Error(err))
			} else {
				logger.Warn("Failed to read session", zap.Error(err))
			}
			c.Next()
			return
		}
		if claim == nil {
			c.Next()
			return
		}

		principal, err := resolver.LoadPrincipal(c.Request.Context(), *claim)
		if err != nil {
			logger.Warn("Failed to resolve principal", zap.String("kind", string(claim.Kind)), zap.Error(err))
			c.Next()
			return
		}
		if principal != nil {
			c.Set(common.PrincipalKey, principal)
		}
		c.Next()
	}
}

// GetPrincipal returns the principal set by Identify, or nil.
func GetPrincipal(c *gin.Context) *identity.Principal {
	val, exists := c.Get(common.PrincipalKey)
	if !exists {
		return nil
	}
	p, _ := val.(*identity.Principal)
	return p
}

// CurrentAccount returns the provisioned account of the request, or nil for
// anonymous and staged requests.
func CurrentAccount(c *gin.Context) *account.Account {
	p := GetPrincipal(c)
	if !p.IsProvisioned() {
		return nil
	}
	return p.Account
}

// RequireIdentity rejects requests without any identity, staged or provisioned.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Please log in first."))
			return
		}
		c.Next()
	}
}

// RequireAccount rejects anonymous requests and staged identities that have
// not finished onboarding.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentAccount(c) == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Please log in first."))
			return
		}
		c.Next()
	}
}

// RequireRole lets through provisioned accounts holding one of roles. Missing
// or staged identities get 401; a wrong role gets 403.
func RequireRole(roles ...account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		switch {
		case p == nil:
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Please log in first."))
			return
		case p.Kind == identity.KindStaged:
			// A staged identity never carries a role, whatever the payload claims.
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Finish creating your profile first."))
			return
		case !p.IsProvisioned():
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Please log in first."))
			return
		}

		if !p.Account.HasRole(roles...) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
			return
		}
		c.Next()
	}
}
