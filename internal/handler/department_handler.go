package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/repository"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/response"
)

// DepartmentHandler exposes the administrative routing targets.
type DepartmentHandler struct {
	departments *repository.DepartmentRepository
}

// NewDepartmentHandler constructs handler.
func NewDepartmentHandler(departments *repository.DepartmentRepository) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

// List godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	departments, err := h.departments.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// Get godoc
// @Summary Fetch one department
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.departments.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "department not found"))
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dept, nil)
}
