package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/service"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/response"
)

// AdminHandler exposes operational endpoints: the manual sweep trigger and
// departmental report export.
type AdminHandler struct {
	sweep   *service.SweepService
	reports *service.ReportService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(sweep *service.SweepService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{sweep: sweep, reports: reports}
}

// RunSweep godoc
// @Summary Run one SLA breach sweep pass
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/sla/sweep [post]
func (h *AdminHandler) RunSweep(c *gin.Context) {
	marked, err := h.sweep.RunOnce(c.Request.Context(), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"marked_breached": marked}, nil)
}

// ExportReport godoc
// @Summary Export a grievance report
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param departmentId query string false "Filter by department"
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Router /reports/grievances [get]
func (h *AdminHandler) ExportReport(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	filter := models.GrievanceFilter{
		DepartmentID: c.Query("departmentId"),
		Status:       models.GrievanceStatus(c.Query("status")),
		SLAStatus:    models.SLAStatus(c.Query("slaStatus")),
		PageSize:     queryInt(c, "pageSize", 200),
	}
	data, contentType, err := h.reports.Render(c.Request.Context(), format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=grievance-report."+format)
	c.Data(http.StatusOK, contentType, data)
}
