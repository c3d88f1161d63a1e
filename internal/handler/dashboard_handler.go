package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/service"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/response"
)

// DashboardHandler exposes the public outcomes dashboard.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary godoc
// @Summary Public grievance outcome aggregates
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
