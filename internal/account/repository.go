// File: internal/account/repository.go
package account

import (
	"context"
	"errors"
	"fmt"

	"bookmarked_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedRecordsPurger deletes everything an account owns. It runs inside the
// account deletion transaction, so a failure rolls the whole deletion back.
type OwnedRecordsPurger interface {
	PurgeOwnedBy(tx *gorm.DB, accountID uuid.UUID) (int64, error)
}

// Repository defines the interface for account data operations.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	List(ctx context.Context, page, pageSize int) ([]Account, int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, purgers ...OwnedRecordsPurger) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM account repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new account. A collision on the external identity key is
// reported as ErrConflict.
func (r *gormRepository) Create(ctx context.Context, account *Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("An account already exists for this identity.")
		}
		return err
	}
	return nil
}

// FindByID retrieves an account by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	var model Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Account not found.")
		}
		return nil, err
	}
	return &model, nil
}

// FindByProvider retrieves an account by its external identity key.
func (r *gormRepository) FindByProvider(ctx context.Context, provider, providerID string) (*Account, error) {
	var model Account
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails(
				fmt.Sprintf("No account for provider %s.", provider),
			)
		}
		return nil, err
	}
	return &model, nil
}

// FindByEmail retrieves the oldest account registered with email.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var model Account
	err := r.db.WithContext(ctx).Where("email = ?", email).Order("created_at ASC").First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Account not found with this email.")
		}
		return nil, err
	}
	return &model, nil
}

// Update writes all fields of an existing account. It never inserts, so an
// account deleted in the meantime reports ErrNotFound.
func (r *gormRepository) Update(ctx context.Context, account *Account) error {
	res := r.db.WithContext(ctx).Model(&Account{}).
		Where("id = ?", account.ID).
		Select("*").Omit("id", "created_at").
		Updates(account)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("Update conflicts with another account.")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Account not found.")
	}
	return nil
}

// List returns a page of accounts, newest first, and the total count.
func (r *gormRepository) List(ctx context.Context, page, pageSize int) ([]Account, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []Account
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(common.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Count returns the number of accounts.
func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Account{}).Count(&total).Error
	return total, err
}

// Delete removes the account and, in the same transaction, every record the
// purgers own for it.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID, purgers ...OwnedRecordsPurger) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range purgers {
			if _, err := p.PurgeOwnedBy(tx, id); err != nil {
				return fmt.Errorf("purge owned records: %w", err)
			}
		}
		res := tx.Where("id = ?", id).Delete(&Account{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Account not found.")
		}
		return nil
	})
}
