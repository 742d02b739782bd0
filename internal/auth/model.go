// File: internal/auth/model.go
package auth

import "bookmarked_backend/internal/account"

// CreateProfileRequest is the onboarding form body.
type CreateProfileRequest struct {
	Nickname string `json:"nickname" binding:"max=100"`
}

// CreateProfileResponse is returned once an Account backs the session.
type CreateProfileResponse struct {
	Success bool             `json:"success"`
	Account account.Response `json:"account"`
	Note    string           `json:"note,omitempty"`
	Token   string           `json:"token,omitempty"`
}

// StagedView is what /auth/user shows for an identity still onboarding.
type StagedView struct {
	IsNew     bool   `json:"isNew"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar,omitempty"`
}

// DeleteAccountResponse confirms an account deletion.
type DeleteAccountResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SessionDebugResponse describes how the current request was attributed.
type SessionDebugResponse struct {
	Mode          string `json:"mode"`
	Principal     string `json:"principal"`
	AccountID     string `json:"accountId,omitempty"`
	HasCookie     bool   `json:"hasCookie"`
	HasAuthHeader bool   `json:"hasAuthHeader"`
}
