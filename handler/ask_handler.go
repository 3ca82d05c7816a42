package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timewise-app/support-be/database"
	"github.com/timewise-app/support-be/service"
	"github.com/timewise-app/support-be/types"
)

type AskHandler struct {
	support *service.SupportService
}

func NewAskHandler(support *service.SupportService) *AskHandler {
	return &AskHandler{
		support: support,
	}
}

// HandleAsk runs the full support pipeline for a single question.
func (h *AskHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.support.HandleQuery(c.Request.Context(), types.SupportQuery{
		Text:       req.Query,
		Role:       req.Role,
		ModuleHint: req.ModuleHint,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, database.ErrCorpusUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, types.DataResponse{
			Status:  false,
			Message: "Support system temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   resp,
	})
}
