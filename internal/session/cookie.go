// File: internal/session/cookie.go
package session

import (
	"net/http"

	"bookmarked_backend/internal/config"

	"github.com/gin-gonic/gin"
)

// SetCookie writes an HttpOnly cookie using the configured domain, Secure
// flag and SameSite policy. maxAge < 0 deletes the cookie.
func SetCookie(c *gin.Context, cfg *config.Config, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.OAuthCookieDomain,
		MaxAge:   maxAge,
		Secure:   cfg.OAuthCookieSecure,
		HttpOnly: true,
		SameSite: ParseSameSite(cfg.OAuthCookieSameSite),
	})
}

// ClearCookie expires the named cookie on the client.
func ClearCookie(c *gin.Context, cfg *config.Config, name string) {
	SetCookie(c, cfg, name, "", -1)
}

// ParseSameSite maps the config string onto http.SameSite, defaulting to Lax.
func ParseSameSite(s string) http.SameSite {
	switch s {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
