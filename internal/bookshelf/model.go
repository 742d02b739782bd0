// File: internal/bookshelf/model.go
package bookshelf

import (
	"database/sql/driver"
	"time"

	"bookmarked_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DefaultShelf is where newly added books land.
const DefaultShelf = "Want to Read"

// Authors is stored as a native text[] on postgres and as an array literal
// in a text column elsewhere.
type Authors []string

func (a Authors) Value() (driver.Value, error) {
	return pq.StringArray(a).Value()
}

func (a *Authors) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*a = Authors(arr)
	return nil
}

// GormDataType lets gorm parse the field as a scalar column.
func (Authors) GormDataType() string {
	return "text"
}

// GormDBDataType picks the column type per dialect.
func (Authors) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Entry is one book on an account's shelves, with its reading diary.
type Entry struct {
	common.BaseModel
	AccountID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_bookshelf_account_book" json:"accountId"`
	BookID         string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_bookshelf_account_book" json:"bookId"`
	Title          string     `gorm:"type:varchar(500);not null" json:"title"`
	Authors        Authors    `json:"authors"`
	CoverImage     string     `gorm:"type:text" json:"coverImage"`
	Shelf          string     `gorm:"type:varchar(50);not null" json:"shelf"`
	ShelfSlug      string     `gorm:"type:varchar(60);not null;index" json:"shelfSlug"`
	Notes          string     `gorm:"type:text" json:"notes"`
	Quotes         string     `gorm:"type:text" json:"quotes"`
	MemorableScene string     `gorm:"type:text" json:"memorableScene"`
	Rating         int        `gorm:"not null;default:0" json:"rating"`
	DateRead       *time.Time `json:"dateRead"`
	IsTopPick      bool       `gorm:"not null;default:false" json:"isTopPick"`
}

// TableName specifies the table name for the Entry model.
func (Entry) TableName() string {
	return "bookshelf_entries"
}

// SetShelf assigns the shelf and keeps ShelfSlug in step.
func (e *Entry) SetShelf(name string) {
	e.Shelf = name
	e.ShelfSlug = slug.Make(name)
}

// --- DTOs ---

// AddEntryRequest adds a book from the catalog to "Want to Read".
type AddEntryRequest struct {
	BookID     string   `json:"bookId" binding:"required,max=255"`
	Title      string   `json:"title" binding:"required,max=500"`
	Authors    []string `json:"authors" binding:"omitempty,max=50,dive,max=255"`
	CoverImage string   `json:"coverImage" binding:"omitempty,max=2048"`
}

// UpdateEntryRequest is a partial diary update; nil fields are left untouched.
// DateRead takes YYYY-MM-DD or RFC 3339; an empty string clears it.
type UpdateEntryRequest struct {
	Shelf          *string `json:"shelf" binding:"omitempty,min=1,max=50"`
	Notes          *string `json:"notes"`
	Quotes         *string `json:"quotes"`
	MemorableScene *string `json:"memorableScene"`
	Rating         *int    `json:"rating" binding:"omitempty,gte=0,lte=10"`
	DateRead       *string `json:"dateRead"`
	IsTopPick      *bool   `json:"isTopPick"`
}

// EntryResponse is the public shape of a shelf entry.
type EntryResponse struct {
	ID             uuid.UUID  `json:"id"`
	BookID         string     `json:"bookId"`
	Title          string     `json:"title"`
	Authors        []string   `json:"authors"`
	CoverImage     string     `json:"coverImage,omitempty"`
	Shelf          string     `json:"shelf"`
	ShelfSlug      string     `json:"shelfSlug"`
	Notes          string     `json:"notes"`
	Quotes         string     `json:"quotes"`
	MemorableScene string     `json:"memorableScene"`
	Rating         int        `json:"rating"`
	DateRead       *time.Time `json:"dateRead,omitempty"`
	IsTopPick      bool       `json:"isTopPick"`
	AddedAt        time.Time  `json:"addedAt"`
}

func ToEntryResponse(e *Entry) EntryResponse {
	authors := []string(e.Authors)
	if authors == nil {
		authors = []string{}
	}
	return EntryResponse{
		ID:             e.ID,
		BookID:         e.BookID,
		Title:          e.Title,
		Authors:        authors,
		CoverImage:     e.CoverImage,
		Shelf:          e.Shelf,
		ShelfSlug:      e.ShelfSlug,
		Notes:          e.Notes,
		Quotes:         e.Quotes,
		MemorableScene: e.MemorableScene,
		Rating:         e.Rating,
		DateRead:       e.DateRead,
		IsTopPick:      e.IsTopPick,
		AddedAt:        e.CreatedAt,
	}
}

func ToEntryResponses(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToEntryResponse(&entries[i]))
	}
	return out
}
