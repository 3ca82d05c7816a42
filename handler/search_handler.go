package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/timewise-app/support-be/database"
	"github.com/timewise-app/support-be/service"
	"github.com/timewise-app/support-be/types"
)

const defaultSearchLimit = 5

type SearchHandler struct {
	support *service.SupportService
}

func NewSearchHandler(support *service.SupportService) *SearchHandler {
	return &SearchHandler{
		support: support,
	}
}

// HandleSearch returns scored documents for a query without invoking
// the generator.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Missing query parameter 'q'",
		})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: "Invalid limit parameter",
			})
			return
		}
		limit = parsed
	}

	docs, err := h.support.SearchDocuments(c.Request.Context(), query, c.Query("category"), c.Query("module"), limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, database.ErrCorpusUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, types.DataResponse{
			Status:  false,
			Message: "Search failed",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   docs,
	})
}
