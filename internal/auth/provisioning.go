// File: internal/auth/provisioning.go
package auth

import (
	"context"
	"errors"
	"strings"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/events"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/platform/metrics"

	"go.uber.org/zap"
)

// Provisioner drives an identity from "verified by the provider" to "has an
// Account". Handlers and the identify middleware depend on it.
type Provisioner interface {
	ResolveIdentity(ctx context.Context, ext identity.External) (*identity.Principal, error)
	CreateProfile(ctx context.Context, principal *identity.Principal, nickname string) (*account.Account, bool, error)
	LoadPrincipal(ctx context.Context, claim identity.Claim) (*identity.Principal, error)
}

// ProvisioningService implements Provisioner on top of the account store.
type ProvisioningService struct {
	accounts  account.Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewProvisioningService creates a new ProvisioningService.
func NewProvisioningService(accounts account.Repository, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{
		accounts:  accounts,
		publisher: publisher,
		metrics:   m,
		logger:    logger.Named("ProvisioningService"),
	}
}

// ResolveIdentity returns the Account principal for a returning identity, or
// a staged principal when nothing is stored for it yet.
func (s *ProvisioningService) ResolveIdentity(ctx context.Context, ext identity.External) (*identity.Principal, error) {
	acc, err := s.accounts.FindByProvider(ctx, ext.Provider, ext.Subject)
	if err == nil {
		s.metrics.ObserveProvisioning(metrics.OutcomeReturning)
		s.logger.Info("Returning user signed in", zap.String("accountID", acc.ID.String()))
		return identity.AccountPrincipal(acc), nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Account lookup failed", zap.String("provider", ext.Provider), zap.Error(err))
		return nil, err
	}

	s.metrics.ObserveProvisioning(metrics.OutcomeStaged)
	s.logger.Info("New identity staged for onboarding", zap.String("provider", ext.Provider))
	return identity.StagedPrincipal(identity.NewStaged(ext)), nil
}

// CreateProfile provisions the Account for principal. It is idempotent: when
// an Account already exists for the principal's external identity it is
// returned unchanged with reused set.
func (s *ProvisioningService) CreateProfile(ctx context.Context, principal *identity.Principal, nickname string) (*account.Account, bool, error) {
	if principal == nil {
		return nil, false, common.ErrUnauthorized.WithDetails("Please log in first.")
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, false, common.NewValidationAPIError(map[string]string{"nickname": "Nickname is required."})
	}

	provider, subject := principal.ExternalKey()
	existing, err := s.accounts.FindByProvider(ctx, provider, subject)
	switch {
	case err == nil:
		s.metrics.ObserveProvisioning(metrics.OutcomeReused)
		s.logger.Info("Profile already exists, reusing", zap.String("accountID", existing.ID.String()))
		return existing, true, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, false, err
	}

	if principal.Kind != identity.KindStaged {
		// The account behind a provisioned principal vanished mid-request.
		return nil, false, common.ErrUnauthorized.WithDetails("Please log in again.")
	}

	staged := principal.Staged
	acc := account.New(staged.Provider, staged.Subject, staged.Email, staged.AvatarURL, nickname)
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, common.ErrConflict) {
			s.metrics.ObserveProvisioning(metrics.OutcomeConflict)
			s.logger.Warn("Concurrent profile creation lost the race", zap.String("provider", provider))
		}
		return nil, false, err
	}

	s.metrics.ObserveProvisioning(metrics.OutcomeProvisioned)
	s.logger.Info("Profile created", zap.String("accountID", acc.ID.String()))

	if err := s.publisher.Publish(ctx, events.NewEvent(events.AccountCreated, acc.ID, acc.Email)); err != nil {
		s.logger.Warn("Failed to publish account creation event", zap.String("accountID", acc.ID.String()), zap.Error(err))
	}
	return acc, false, nil
}

// LoadPrincipal rehydrates a claim read by the session issuer. An account
// claim whose Account has since been deleted yields no principal.
func (s *ProvisioningService) LoadPrincipal(ctx context.Context, claim identity.Claim) (*identity.Principal, error) {
	switch claim.Kind {
	case identity.KindStaged:
		if claim.Staged == nil {
			return nil, nil
		}
		return identity.StagedPrincipal(claim.Staged), nil
	case identity.KindAccount:
		acc, err := s.accounts.FindByID(ctx, claim.AccountID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return identity.AccountPrincipal(acc), nil
	}
	return nil, nil
}
