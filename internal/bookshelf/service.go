// File: internal/bookshelf/service.go
package bookshelf

import (
	"context"
	"strings"
	"time"

	"bookmarked_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the shelf operations available to a provisioned account.
type Service interface {
	List(ctx context.Context, accountID uuid.UUID, shelf string) ([]Entry, error)
	Add(ctx context.Context, accountID uuid.UUID, req AddEntryRequest) (*Entry, error)
	Update(ctx context.Context, accountID, entryID uuid.UUID, req UpdateEntryRequest) (*Entry, error)
	Remove(ctx context.Context, accountID, entryID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new shelf service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("BookshelfService"),
	}
}

// List accepts either a shelf name ("Currently Reading") or its slug.
func (s *ServiceImplementation) List(ctx context.Context, accountID uuid.UUID, shelf string) ([]Entry, error) {
	var shelfSlug string
	if shelf = strings.TrimSpace(shelf); shelf != "" {
		shelfSlug = slug.Make(shelf)
	}
	return s.repo.ListByAccount(ctx, accountID, shelfSlug)
}

func (s *ServiceImplementation) Add(ctx context.Context, accountID uuid.UUID, req AddEntryRequest) (*Entry, error) {
	entry := &Entry{
		AccountID:  accountID,
		BookID:     strings.TrimSpace(req.BookID),
		Title:      strings.TrimSpace(req.Title),
		Authors:    Authors(req.Authors),
		CoverImage: req.CoverImage,
	}
	if entry.BookID == "" || entry.Title == "" {
		return nil, common.NewValidationAPIError(map[string]string{"bookId": "Book ID and title are required."})
	}
	entry.SetShelf(DefaultShelf)

	if err := s.repo.Create(ctx, entry); err != nil {
		if _, ok := common.IsAPIError(err); !ok {
			s.logger.Error("Failed to add book", zap.String("accountID", accountID.String()), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("Book added to shelf", zap.String("accountID", accountID.String()), zap.String("bookID", entry.BookID))
	return entry, nil
}

// Update applies the diary fields present in req to an entry owned by accountID.
func (s *ServiceImplementation) Update(ctx context.Context, accountID, entryID uuid.UUID, req UpdateEntryRequest) (*Entry, error) {
	entry, err := s.repo.FindOwned(ctx, entryID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Shelf != nil {
		name := strings.TrimSpace(*req.Shelf)
		if name == "" {
			return nil, common.NewValidationAPIError(map[string]string{"shelf": "Shelf cannot be empty."})
		}
		entry.SetShelf(name)
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if req.Quotes != nil {
		entry.Quotes = *req.Quotes
	}
	if req.MemorableScene != nil {
		entry.MemorableScene = *req.MemorableScene
	}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 10 {
			return nil, common.NewValidationAPIError(map[string]string{"rating": "Rating must be between 0 and 10."})
		}
		entry.Rating = *req.Rating
	}
	if req.DateRead != nil {
		dateRead, err := parseDateRead(*req.DateRead)
		if err != nil {
			return nil, common.NewValidationAPIError(map[string]string{"dateRead": "Use YYYY-MM-DD."})
		}
		entry.DateRead = dateRead
	}
	if req.IsTopPick != nil {
		entry.IsTopPick = *req.IsTopPick
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to update shelf entry", zap.String("entryID", entryID.String()), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (s *ServiceImplementation) Remove(ctx context.Context, accountID, entryID uuid.UUID) error {
	if err := s.repo.DeleteOwned(ctx, entryID, accountID); err != nil {
		return err
	}
	s.logger.Info("Book removed from shelf", zap.String("accountID", accountID.String()), zap.String("entryID", entryID.String()))
	return nil
}

func (s *ServiceImplementation) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func parseDateRead(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
