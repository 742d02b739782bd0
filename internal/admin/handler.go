// File: internal/admin/handler.go
package admin

import (
	"context"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntryCounter reports how many shelf entries exist across all accounts.
type EntryCounter interface {
	Count(ctx context.Context) (int64, error)
}

// StatsResponse is the aggregate view of the library.
type StatsResponse struct {
	TotalUsers int64 `json:"totalUsers"`
	TotalBooks int64 `json:"totalBooks"`
}

// Handler serves the /admin routes.
type Handler struct {
	accounts account.Service
	entries  EntryCounter
	logger   *zap.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(accounts account.Service, entries EntryCounter, logger *zap.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		entries:  entries,
		logger:   logger.Named("AdminHandler"),
	}
}

// RegisterRoutes sets up the admin routes behind authMW and the admin role check.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	adminGroup := router.Group("/admin")
	adminGroup.Use(authMW, middleware.RequireRole(account.RoleAdmin))
	{
		adminGroup.GET("/stats", h.stats)
		adminGroup.GET("/users", h.listUsers)
		adminGroup.DELETE("/users/:id", h.deleteUser)
	}
}

func (h *Handler) stats(c *gin.Context) {
	users, err := h.accounts.Count(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	books, err := h.entries.Count(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Stats retrieved successfully.", StatsResponse{TotalUsers: users, TotalBooks: books})
}

func (h *Handler) listUsers(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	accounts, pagination, err := h.accounts.List(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Users retrieved successfully.", account.ToResponses(accounts), pagination)
}

func (h *Handler) deleteUser(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), targetID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	actor := middleware.CurrentAccount(c)
	h.logger.Info("Admin deleted account", zap.String("adminID", actor.ID.String()), zap.String("accountID", targetID.String()))
	common.RespondOK(c, "User and their books deleted.", nil)
}
