// File: internal/account/service.go
package account

import (
	"context"
	"strings"

	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines account operations used by the auth and admin handlers.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, pageSize int) ([]Account, *common.Pagination, error)
	Count(ctx context.Context) (int64, error)
	PromoteByEmail(ctx context.Context, email string) (*Account, error)
}

// ServiceImplementation implements Service on top of a Repository.
type ServiceImplementation struct {
	repo      Repository
	purgers   []OwnedRecordsPurger
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService creates an account service. purgers run inside every deletion.
func NewService(repo Repository, purgers []OwnedRecordsPurger, publisher events.Publisher, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:      repo,
		purgers:   purgers,
		publisher: publisher,
		logger:    logger.Named("AccountService"),
	}
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies the fields present in req. A nickname, when present,
// is trimmed and must not end up empty.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Account, error) {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if nickname == "" {
			return nil, common.NewValidationAPIError(map[string]string{"nickname": "Nickname cannot be empty."})
		}
		acc.Nickname = nickname
	}
	if req.Bio != nil {
		acc.Bio = *req.Bio
	}
	if req.FavoriteGenre != nil {
		acc.FavoriteGenre = *req.FavoriteGenre
	}
	if req.Goal != nil {
		if *req.Goal < 0 {
			return nil, common.NewValidationAPIError(map[string]string{"goal": "Goal cannot be negative."})
		}
		acc.Goal = *req.Goal
	}

	if err := s.repo.Update(ctx, acc); err != nil {
		s.logger.Error("Failed to update profile", zap.String("accountID", id.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Profile updated", zap.String("accountID", id.String()))
	return acc, nil
}

// Delete removes the account together with all owned records. Either
// everything is removed or the error is returned and nothing is.
func (s *ServiceImplementation) Delete(ctx context.Context, id uuid.UUID) error {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, s.purgers...); err != nil {
		s.logger.Error("Account deletion failed", zap.String("accountID", id.String()), zap.Error(err))
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		return common.ErrInternalServer.WithDetails("Could not delete account.")
	}
	s.logger.Info("Account deleted", zap.String("accountID", id.String()))

	if err := s.publisher.Publish(ctx, events.NewEvent(events.AccountDeleted, acc.ID, acc.Email)); err != nil {
		s.logger.Warn("Failed to publish account deletion event", zap.String("accountID", id.String()), zap.Error(err))
	}
	return nil
}

func (s *ServiceImplementation) List(ctx context.Context, page, pageSize int) ([]Account, *common.Pagination, error) {
	accounts, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return accounts, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// PromoteByEmail grants the admin role. It backs the promote-admin command
// and is not reachable over HTTP.
func (s *ServiceImplementation) PromoteByEmail(ctx context.Context, email string) (*Account, error) {
	acc, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if acc.Role == RoleAdmin {
		return acc, nil
	}
	acc.Role = RoleAdmin
	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	s.logger.Info("Account promoted to admin", zap.String("accountID", acc.ID.String()))
	return acc, nil
}
