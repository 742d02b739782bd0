// File: internal/catalog/handler.go
package catalog

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"bookmarked_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the public book search proxy.
type Handler struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(searcher Searcher, logger *zap.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		logger:   logger.Named("CatalogHandler"),
	}
}

// RegisterRoutes sets up the catalog routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search-books", h.searchBooks)
}

func (h *Handler) searchBooks(c *gin.Context) {
	query := c.Request.URL.Query()
	if !hasTerms(query) {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("A search query is required."))
		return
	}

	body, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			h.logger.Warn("Book catalog unavailable", zap.Int("status", upstream.StatusCode), zap.Error(upstream.Err))
			common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("The book catalog is unavailable right now."))
			return
		}
		common.RespondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func hasTerms(query url.Values) bool {
	for _, values := range query {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				return true
			}
		}
	}
	return false
}
