package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/service"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/response"
)

// LedgerHandler exposes the grievance event ledger.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler constructs handler.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// List godoc
// @Summary List the event ledger for a grievance
// @Tags Ledger
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/events [get]
func (h *LedgerHandler) List(c *gin.Context) {
	events, err := h.ledger.ListEvents(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Append godoc
// @Summary Append a ledger event
// @Tags Ledger
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param payload body service.AppendEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /grievances/{id}/events [post]
func (h *LedgerHandler) Append(c *gin.Context) {
	var req service.AppendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.ledger.AppendEvent(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}
