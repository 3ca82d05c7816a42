package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timewise-app/support-be/service"
	"github.com/timewise-app/support-be/types"
)

type StatsHandler struct {
	support *service.SupportService
}

func NewStatsHandler(support *service.SupportService) *StatsHandler {
	return &StatsHandler{
		support: support,
	}
}

// HandleStats reports corpus counts and category distribution.
func (h *StatsHandler) HandleStats(c *gin.Context) {
	stats, err := h.support.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  false,
			Message: "Corpus temporarily unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   stats,
	})
}

// HandleHealth reports collaborator status without running the pipeline.
func (h *StatsHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.support.Health(c.Request.Context()))
}
