// File: internal/auth/provider.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/identity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ProviderGoogle is the only provider wired today.
const ProviderGoogle = "google"

// GoogleAPIEndpoint overrides the base URL of the Google userinfo API. Empty
// means the library default. Tests point it at an httptest server.
var GoogleAPIEndpoint = ""

// ProviderError reports a failed or refused exchange with the identity
// provider. Callers redirect to a safe page instead of surfacing it.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is, or wraps, a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IdentityProvider runs the redirect-based OAuth handshake with a third party.
// It never touches the account store.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*identity.External, error)
}

// GoogleProvider exchanges Google authorization codes for verified profiles.
type GoogleProvider struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewGoogleProvider creates a GoogleProvider.
func NewGoogleProvider(cfg *config.Config) *GoogleProvider {
	return &GoogleProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *GoogleProvider) Name() string { return ProviderGoogle }

// oauthConfig is built per call so tests can swap google.Endpoint.
func (p *GoogleProvider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.GoogleClientID,
		ClientSecret: p.cfg.GoogleClientSecret,
		RedirectURL:  p.cfg.GoogleRedirectURI,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}
}

// AuthCodeURL returns the consent screen URL, always offering the account chooser.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauthConfig().AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades code for tokens and fetches the user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*identity.External, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &ProviderError{Provider: ProviderGoogle, Op: "exchange", Err: errors.New("missing authorization code")}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	oauthCfg := p.oauthConfig()

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderGoogle, Op: "exchange", Err: err}
	}

	opts := []option.ClientOption{option.WithHTTPClient(oauthCfg.Client(ctx, token))}
	if GoogleAPIEndpoint != "" {
		opts = append(opts, option.WithEndpoint(GoogleAPIEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderGoogle, Op: "userinfo client", Err: err}
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, &ProviderError{Provider: ProviderGoogle, Op: "userinfo", Err: err}
	}
	if info.Id == "" || info.Email == "" {
		return nil, &ProviderError{Provider: ProviderGoogle, Op: "userinfo", Err: errors.New("profile lacks subject or email")}
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, &ProviderError{Provider: ProviderGoogle, Op: "userinfo", Err: errors.New("email not verified")}
	}

	return &identity.External{
		Provider:  ProviderGoogle,
		Subject:   info.Id,
		Email:     strings.ToLower(info.Email),
		AvatarURL: info.Picture,
	}, nil
}
