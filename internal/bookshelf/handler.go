// File: internal/bookshelf/handler.go
package bookshelf

import (
	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for shelf handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new shelf handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("BookshelfHandler"),
	}
}

// RegisterRoutes sets up the routes for shelf operations. Every route needs a
// provisioned account.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	shelfGroup := router.Group("/bookshelf")
	shelfGroup.Use(authMW)
	{
		shelfGroup.GET("", h.listEntries)
		shelfGroup.GET("/", h.listEntries)
		shelfGroup.POST("/add", h.addEntry)
		shelfGroup.PUT("/:id", h.updateEntry)
		shelfGroup.DELETE("/:id", h.removeEntry)
	}
}

func (h *Handler) listEntries(c *gin.Context) {
	acc := middleware.CurrentAccount(c)
	entries, err := h.service.List(c.Request.Context(), acc.ID, c.Query("shelf"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Bookshelf retrieved successfully.", ToEntryResponses(entries))
}

func (h *Handler) addEntry(c *gin.Context) {
	acc := middleware.CurrentAccount(c)

	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("AddEntry: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	entry, err := h.service.Add(c.Request.Context(), acc.ID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Book added to your shelf.", ToEntryResponse(entry))
}

func (h *Handler) updateEntry(c *gin.Context) {
	acc := middleware.CurrentAccount(c)
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid entry ID format."))
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateEntry: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	entry, err := h.service.Update(c.Request.Context(), acc.ID, entryID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Shelf entry updated.", ToEntryResponse(entry))
}

func (h *Handler) removeEntry(c *gin.Context) {
	acc := middleware.CurrentAccount(c)
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid entry ID format."))
		return
	}

	if err := h.service.Remove(c.Request.Context(), acc.ID, entryID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Book removed from your shelf.", nil)
}
