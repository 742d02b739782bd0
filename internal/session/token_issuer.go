// File: internal/session/token_issuer.go
package session

import (
	"errors"
	"fmt"
	"time"

	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/platform/crypto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenIssuerName = "bookmarked"

// TokenClaims is the signed payload of a portable token. It carries the
// external identity, the staging flag and the account ID once there is one.
type TokenClaims struct {
	IsNew           bool   `json:"isNew"`
	Provider        string `json:"provider"`
	ProviderSubject string `json:"providerId"`
	Email           string `json:"email"`
	AvatarURL       string `json:"avatar,omitempty"`
	AccountID       string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs claims into HS256 tokens with a key derived from SESSION_SECRET.
type TokenIssuer struct {
	key       []byte
	cfg       *config.Config
	blocklist TokenBlocklistService
	logger    *zap.Logger
	now       func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(cfg *config.Config, blocklist TokenBlocklistService, logger *zap.Logger) (*TokenIssuer, error) {
	key, err := crypto.DeriveKey(cfg.SessionSecret, "portable-token", 32)
	if err != nil {
		return nil, err
	}
	return &TokenIssuer{
		key:       key,
		cfg:       cfg,
		blocklist: blocklist,
		logger:    logger.Named("TokenIssuer"),
		now:       time.Now,
	}, nil
}

func (i *TokenIssuer) Mode() string { return config.SessionModeToken }

// Issue signs claim. Nothing is stored server-side.
func (i *TokenIssuer) Issue(_ *gin.Context, claim identity.Claim) (string, error) {
	now := i.now()
	tc := TokenClaims{
		Email:     claim.Email,
		AvatarURL: claim.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuerName,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime(i.cfg, claim))),
		},
	}
	switch claim.Kind {
	case identity.KindStaged:
		tc.IsNew = true
		tc.Provider = claim.Staged.Provider
		tc.ProviderSubject = claim.Staged.Subject
	case identity.KindAccount:
		tc.AccountID = claim.AccountID.String()
	default:
		return "", fmt.Errorf("cannot issue token for claim kind %q", claim.Kind)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Read verifies the presented token and converts it back into a claim.
func (i *TokenIssuer) Read(c *gin.Context) (*identity.Claim, error) {
	raw := common.GetTokenFromContext(c)
	if raw == "" {
		return nil, nil
	}

	tc, err := i.parse(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := i.blocklist.IsBlocklisted(c.Request.Context(), tc.ID)
	if err != nil {
		return nil, fmt.Errorf("check blocklist: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}

	claim, err := toClaim(tc)
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// Clear revokes the presented token until it expires.
func (i *TokenIssuer) Clear(c *gin.Context) error {
	raw := common.GetTokenFromContext(c)
	if raw == "" {
		return nil
	}
	tc, err := i.parse(raw)
	if err != nil {
		// Nothing trustworthy to revoke.
		return nil
	}
	return i.blocklist.AddToBlocklist(c.Request.Context(), tc.ID, tc.ExpiresAt.Time)
}

func (i *TokenIssuer) parse(raw string) (*TokenClaims, error) {
	tc := &TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, tc,
		func(t *jwt.Token) (interface{}, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		i.logger.Debug("Rejected token", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if tc.ID == "" {
		return nil, ErrInvalidSession
	}
	return tc, nil
}

func toClaim(tc *TokenClaims) (*identity.Claim, error) {
	if tc.IsNew {
		staged := identity.NewStaged(identity.External{
			Provider:  tc.Provider,
			Subject:   tc.ProviderSubject,
			Email:     tc.Email,
			AvatarURL: tc.AvatarURL,
		})
		claim := identity.StagedClaim(staged)
		if !claim.Valid() {
			return nil, ErrInvalidSession
		}
		return &claim, nil
	}

	id, err := uuid.Parse(tc.AccountID)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	claim := identity.Claim{Kind: identity.KindAccount, AccountID: id, Email: tc.Email, AvatarURL: tc.AvatarURL}
	if !claim.Valid() {
		return nil, ErrInvalidSession
	}
	return &claim, nil
}
