// File: internal/bookshelf/repository.go
package bookshelf

import (
	"context"
	"errors"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for shelf entry data operations. Every
// lookup is scoped to the owning account.
type Repository interface {
	account.OwnedRecordsPurger

	Create(ctx context.Context, entry *Entry) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, shelfSlug string) ([]Entry, error)
	FindOwned(ctx context.Context, id, accountID uuid.UUID) (*Entry, error)
	Update(ctx context.Context, entry *Entry) error
	DeleteOwned(ctx context.Context, id, accountID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM shelf repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, entry *Entry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("This book is already on your shelves.")
		}
		return err
	}
	return nil
}

// ListByAccount returns the account's entries, newest first. An empty
// shelfSlug means every shelf.
func (r *gormRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, shelfSlug string) ([]Entry, error) {
	query := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	if shelfSlug != "" {
		query = query.Where("shelf_slug = ?", shelfSlug)
	}

	var entries []Entry
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindOwned reports ErrNotFound for entries that exist but belong to someone else.
func (r *gormRepository) FindOwned(ctx context.Context, id, accountID uuid.UUID) (*Entry, error) {
	var entry Entry
	err := r.db.WithContext(ctx).Where("id = ? AND account_id = ?", id, accountID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Book not found on your shelves.")
		}
		return nil, err
	}
	return &entry, nil
}

// Update writes every column of an existing entry. It never inserts, so an
// entry purged in the meantime stays gone.
func (r *gormRepository) Update(ctx context.Context, entry *Entry) error {
	res := r.db.WithContext(ctx).Model(&Entry{}).
		Where("id = ? AND account_id = ?", entry.ID, entry.AccountID).
		Select("*").Omit("id", "created_at").
		Updates(entry)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Book not found on your shelves.")
	}
	return nil
}

func (r *gormRepository) DeleteOwned(ctx context.Context, id, accountID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND account_id = ?", id, accountID).Delete(&Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Book not found on your shelves.")
	}
	return nil
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Entry{}).Count(&total).Error
	return total, err
}

// PurgeOwnedBy deletes every entry of accountID using the caller's transaction.
func (r *gormRepository) PurgeOwnedBy(tx *gorm.DB, accountID uuid.UUID) (int64, error) {
	res := tx.Where("account_id = ?", accountID).Delete(&Entry{})
	return res.RowsAffected, res.Error
}
