package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/service"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/response"
)

// GrievanceHandler exposes grievance lifecycle endpoints.
type GrievanceHandler struct {
	grievances *service.GrievanceService
}

// NewGrievanceHandler constructs handler.
func NewGrievanceHandler(grievances *service.GrievanceService) *GrievanceHandler {
	return &GrievanceHandler{grievances: grievances}
}

// Submit godoc
// @Summary File a new grievance
// @Tags Grievances
// @Accept json
// @Produce json
// @Param payload body service.SubmitGrievanceRequest true "Grievance payload"
// @Success 201 {object} response.Envelope
// @Router /grievances [post]
func (h *GrievanceHandler) Submit(c *gin.Context) {
	var req service.SubmitGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	g, err := h.grievances.Submit(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, g)
}

// Get godoc
// @Summary Fetch one grievance
// @Tags Grievances
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id} [get]
func (h *GrievanceHandler) Get(c *gin.Context) {
	g, err := h.grievances.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, g, nil)
}

// GetSLA godoc
// @Summary Fetch the SLA clock snapshot for a grievance
// @Tags Grievances
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/sla [get]
func (h *GrievanceHandler) GetSLA(c *gin.Context) {
	snap, err := h.grievances.GetSLA(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap, nil)
}

// List godoc
// @Summary List grievances
// @Tags Grievances
// @Produce json
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param departmentId query string false "Filter by department"
// @Param citizenId query string false "Filter by filing citizen"
// @Success 200 {object} response.Envelope
// @Router /grievances [get]
func (h *GrievanceHandler) List(c *gin.Context) {
	filter := models.GrievanceFilter{
		CitizenID:    c.Query("citizenId"),
		DepartmentID: c.Query("departmentId"),
		Status:       models.GrievanceStatus(c.Query("status")),
		Category:     models.Category(c.Query("category")),
		SLAStatus:    models.SLAStatus(c.Query("slaStatus")),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", 50),
	}
	grievances, pagination, err := h.grievances.List(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grievances, pagination)
}

// ChangeStatus godoc
// @Summary Apply a staff status transition
// @Tags Grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param payload body service.StatusChangeRequest true "Transition payload"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/status [patch]
func (h *GrievanceHandler) ChangeStatus(c *gin.Context) {
	var req service.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	g, event, err := h.grievances.ApplyStatusChange(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"grievance": g, "event": event}, nil)
}

// Reopen godoc
// @Summary Reopen a closed grievance
// @Tags Grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param payload body service.ReopenRequest true "Reopen payload"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/reopen [post]
func (h *GrievanceHandler) Reopen(c *gin.Context) {
	var req service.ReopenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	g, err := h.grievances.Reopen(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, g, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
