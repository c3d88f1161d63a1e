package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/service"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/response"
)

// SupportHandler exposes support-signal endpoints.
type SupportHandler struct {
	support *service.SupportService
}

// NewSupportHandler constructs handler.
func NewSupportHandler(support *service.SupportService) *SupportHandler {
	return &SupportHandler{support: support}
}

// Add godoc
// @Summary Support a grievance
// @Tags Support
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 201 {object} response.Envelope
// @Router /grievances/{id}/support [post]
func (h *SupportHandler) Add(c *gin.Context) {
	count, err := h.support.Add(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"support_count": count})
}

// Remove godoc
// @Summary Withdraw support for a grievance
// @Tags Support
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/support [delete]
func (h *SupportHandler) Remove(c *gin.Context) {
	count, err := h.support.Remove(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"support_count": count}, nil)
}
