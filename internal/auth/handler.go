// File: internal/auth/handler.go
package auth

import (
	"net/http"
	"net/url"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/middleware"
	"bookmarked_backend/internal/platform/metrics"
	"bookmarked_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the /auth routes.
type Handler struct {
	cfg          *config.Config
	provider     IdentityProvider
	provisioning Provisioner
	accounts     account.Service
	issuer       session.Issuer
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	cfg *config.Config,
	provider IdentityProvider,
	provisioning Provisioner,
	accounts account.Service,
	issuer session.Issuer,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:          cfg,
		provider:     provider,
		provisioning: provisioning,
		accounts:     accounts,
		issuer:       issuer,
		metrics:      m,
		logger:       logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the routes for authentication and profile operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/"+h.provider.Name(), h.beginLogin)
		authGroup.GET("/"+h.provider.Name()+"/callback", h.callback)
		authGroup.POST("/create-profile", h.createProfile)
		authGroup.GET("/user", h.currentUser)
		authGroup.GET("/logout", h.logout)

		accountGroup := authGroup.Group("")
		accountGroup.Use(middleware.RequireAccount())
		{
			accountGroup.PUT("/update-profile", h.updateProfile)
			accountGroup.DELETE("/delete-account", h.deleteAccount)
		}

		if !h.cfg.IsRelease() {
			authGroup.GET("/session-debug", h.sessionDebug)
		}
	}
}

func (h *Handler) beginLogin(c *gin.Context) {
	state, err := generateAndSetOAuthState(c, h.cfg)
	if err != nil {
		h.logger.Error("Failed to prepare OAuth state", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not start login."))
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthCodeURL(state))
}

func (h *Handler) callback(c *gin.Context) {
	if errorParam := c.Query("error"); errorParam != "" {
		h.logger.Warn("Provider refused login", zap.String("error", errorParam), zap.String("description", c.Query("error_description")))
		h.redirectHome(c)
		return
	}

	if err := verifyOAuthState(c, h.cfg, c.Query("state")); err != nil {
		h.logger.Warn("OAuth state check failed", zap.Error(err))
		h.redirectHome(c)
		return
	}

	ext, err := h.provider.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.metrics.ObserveProvisioning(metrics.OutcomeProviderErr)
		h.logger.Warn("Identity provider exchange failed", zap.Error(err))
		h.redirectHome(c)
		return
	}

	principal, err := h.provisioning.ResolveIdentity(c.Request.Context(), *ext)
	if err != nil {
		h.logger.Error("Failed to resolve identity", zap.Error(err))
		h.redirectHome(c)
		return
	}

	token, err := h.issuer.Issue(c, principal.Claim())
	if err != nil {
		h.logger.Error("Failed to issue session", zap.Error(err))
		h.redirectHome(c)
		return
	}

	target := h.cfg.FrontendURL + "/dashboard"
	if principal.Kind == identity.KindStaged {
		target = h.cfg.FrontendURL + "/create-profile"
	}
	if token != "" {
		target += "?token=" + url.QueryEscape(token)
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) createProfile(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Please log in first."))
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateProfile: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	acc, reused, err := h.provisioning.CreateProfile(c.Request.Context(), principal, req.Nickname)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	resp := CreateProfileResponse{Success: true, Account: account.ToResponse(acc)}
	if reused {
		resp.Note = "A profile already exists for this login; it was left unchanged."
	}

	// A staged session is swapped for one backed by the Account.
	if principal.Kind == identity.KindStaged {
		token, err := h.issuer.Issue(c, identity.AccountClaim(acc))
		if err != nil {
			h.logger.Error("Profile created but session could not be re-issued", zap.String("accountID", acc.ID.String()), zap.Error(err))
			common.RespondWithError(c, common.ErrInternalServer.WithDetails("Profile created; please log in again."))
			return
		}
		resp.Token = token
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) currentUser(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	switch principal.Kind {
	case identity.KindStaged:
		c.JSON(http.StatusOK, StagedView{
			IsNew:     true,
			Email:     principal.Staged.Email,
			AvatarURL: principal.Staged.AvatarURL,
		})
	case identity.KindAccount:
		c.JSON(http.StatusOK, account.ToResponse(principal.Account))
	default:
		c.JSON(http.StatusOK, nil)
	}
}

func (h *Handler) updateProfile(c *gin.Context) {
	acc := middleware.CurrentAccount(c)

	var req account.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateProfile: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	updated, err := h.accounts.UpdateProfile(c.Request.Context(), acc.ID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account.ToResponse(updated))
}

func (h *Handler) deleteAccount(c *gin.Context) {
	acc := middleware.CurrentAccount(c)

	if err := h.accounts.Delete(c.Request.Context(), acc.ID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.issuer.Clear(c); err != nil {
		h.logger.Warn("Failed to clear session after account deletion", zap.Error(err))
	}
	c.JSON(http.StatusOK, DeleteAccountResponse{Success: true, Message: "Account deleted."})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.issuer.Clear(c); err != nil {
		h.logger.Warn("Failed to clear session on logout", zap.Error(err))
	}
	h.redirectHome(c)
}

func (h *Handler) sessionDebug(c *gin.Context) {
	resp := SessionDebugResponse{
		Mode:          h.issuer.Mode(),
		Principal:     "none",
		HasAuthHeader: c.GetHeader(common.AuthorizationHeader) != "",
	}
	if _, err := c.Cookie(h.cfg.SessionCookieName); err == nil {
		resp.HasCookie = true
	}
	if p := middleware.GetPrincipal(c); p != nil {
		resp.Principal = string(p.Kind)
		if p.IsProvisioned() {
			resp.AccountID = p.Account.ID.String()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, h.cfg.FrontendURL+"/")
}
