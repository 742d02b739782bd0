// File: internal/account/model.go
package account

import (
	"time"

	"bookmarked_backend/internal/common"

	"github.com/google/uuid"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

const (
	DefaultBio           = "Ready to start reading?"
	DefaultFavoriteGenre = "Exploring."
	DefaultGoal          = 10
)

// Account is a provisioned reader. (Provider, ProviderID) is the external
// identity key and is unique across all accounts.
type Account struct {
	common.BaseModel
	Provider      string `gorm:"type:varchar(32);not null;uniqueIndex:idx_accounts_provider_subject" json:"provider"`
	ProviderID    string `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_provider_subject" json:"providerId"`
	Email         string `gorm:"type:varchar(255);not null;index" json:"email"`
	Nickname      string `gorm:"type:varchar(100);not null" json:"nickname"`
	DisplayName   string `gorm:"type:varchar(100)" json:"displayName"`
	AvatarURL     string `gorm:"type:text" json:"avatar"`
	Role          Role   `gorm:"type:varchar(20);not null;default:'standard'" json:"role"`
	Bio           string `gorm:"type:text;not null" json:"bio"`
	FavoriteGenre string `gorm:"type:varchar(100);not null" json:"favoriteGenre"`
	Goal          int    `gorm:"not null" json:"goal"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// New builds an account with the profile defaults applied.
func New(provider, providerID, email, avatarURL, nickname string) *Account {
	return &Account{
		Provider:      provider,
		ProviderID:    providerID,
		Email:         email,
		AvatarURL:     avatarURL,
		Nickname:      nickname,
		DisplayName:   nickname,
		Role:          RoleStandard,
		Bio:           DefaultBio,
		FavoriteGenre: DefaultFavoriteGenre,
		Goal:          DefaultGoal,
	}
}

// HasRole reports whether the account holds one of roles.
func (a *Account) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// --- DTOs ---

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Nickname      *string `json:"nickname" binding:"omitempty,max=100"`
	Bio           *string `json:"bio" binding:"omitempty,max=1000"`
	FavoriteGenre *string `json:"favoriteGenre" binding:"omitempty,max=100"`
	Goal          *int    `json:"goal" binding:"omitempty,gte=0,lte=10000"`
}

// Response is the public shape of an account.
type Response struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Nickname      string    `json:"nickname"`
	DisplayName   string    `json:"displayName,omitempty"`
	AvatarURL     string    `json:"avatar,omitempty"`
	Role          Role      `json:"role"`
	Bio           string    `json:"bio"`
	FavoriteGenre string    `json:"favoriteGenre"`
	Goal          int       `json:"goal"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToResponse converts an Account to its API representation.
func ToResponse(a *Account) Response {
	return Response{
		ID:            a.ID,
		Email:         a.Email,
		Nickname:      a.Nickname,
		DisplayName:   a.DisplayName,
		AvatarURL:     a.AvatarURL,
		Role:          a.Role,
		Bio:           a.Bio,
		FavoriteGenre: a.FavoriteGenre,
		Goal:          a.Goal,
		CreatedAt:     a.CreatedAt,
	}
}

// ToResponses converts a slice of accounts.
func ToResponses(accounts []Account) []Response {
	out := make([]Response, 0, len(accounts))
	for i := range accounts {
		out = append(out, ToResponse(&accounts[i]))
	}
	return out
}
