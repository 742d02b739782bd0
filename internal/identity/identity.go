// Package identity models who is behind a request: the external identity a
// provider vouches for, and the staged or provisioned principal it resolves to.
package identity

import (
	"bookmarked_backend/internal/account"

	"github.com/google/uuid"
)

// Kind tags which variant a Principal or Claim holds.
type Kind string

const (
	// KindStaged is an identity proven by the provider that has no Account yet.
	KindStaged Kind = "staged"
	// KindAccount is an identity backed by a stored Account.
	KindAccount Kind = "account"
)

// External is the verified profile returned by an identity provider.
// It is produced fresh on every login and never persisted on its own.
type External struct {
	Provider  string `json:"provider"`
	Subject   string `json:"subject"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar,omitempty"`
}

// Staged is the onboarding marker. It deliberately has no role.
type Staged struct {
	IsNew bool `json:"isNew"`
	External
}

// NewStaged wraps an external identity in a staged marker.
func NewStaged(ext External) *Staged {
	return &Staged{IsNew: true, External: ext}
}

// Principal is the active identity of a request. Exactly one of Staged or
// Account is set, matching Kind.
type Principal struct {
	Kind    Kind
	Staged  *Staged
	Account *account.Account
}

// StagedPrincipal builds a principal for an identity awaiting onboarding.
func StagedPrincipal(s *Staged) *Principal {
	return &Principal{Kind: KindStaged, Staged: s}
}

// AccountPrincipal builds a principal for a provisioned account.
func AccountPrincipal(a *account.Account) *Principal {
	return &Principal{Kind: KindAccount, Account: a}
}

// IsProvisioned reports whether p is backed by an Account.
func (p *Principal) IsProvisioned() bool {
	return p != nil && p.Kind == KindAccount && p.Account != nil
}

// ExternalKey returns the (provider, subject) pair identifying p upstream.
func (p *Principal) ExternalKey() (provider, subject string) {
	switch p.Kind {
	case KindStaged:
		return p.Staged.Provider, p.Staged.Subject
	case KindAccount:
		return p.Account.Provider, p.Account.ProviderID
	}
	return "", ""
}

// Claim returns the form issuers persist for p.
func (p *Principal) Claim() Claim {
	switch p.Kind {
	case KindAccount:
		return AccountClaim(p.Account)
	default:
		return StagedClaim(p.Staged)
	}
}

// Claim is what a session or token carries between requests. A staged claim
// holds the whole staged identity because nothing in the store backs it; an
// account claim only needs the account's storage key.
type Claim struct {
	Kind      Kind      `json:"kind"`
	Staged    *Staged   `json:"staged,omitempty"`
	AccountID uuid.UUID `json:"accountId,omitempty"`

	// External fields are repeated on account claims so a portable token is
	// self-describing for the client.
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
}

// StagedClaim builds the claim for a staged identity.
func StagedClaim(s *Staged) Claim {
	return Claim{Kind: KindStaged, Staged: s, Email: s.Email, AvatarURL: s.AvatarURL}
}

// AccountClaim builds the claim for a provisioned account.
func AccountClaim(a *account.Account) Claim {
	return Claim{Kind: KindAccount, AccountID: a.ID, Email: a.Email, AvatarURL: a.AvatarURL}
}

// Valid reports whether the claim is internally consistent.
func (c *Claim) Valid() bool {
	switch c.Kind {
	case KindStaged:
		return c.Staged != nil && c.Staged.IsNew && c.Staged.Subject != ""
	case KindAccount:
		return c.AccountID != uuid.Nil
	}
	return false
}
