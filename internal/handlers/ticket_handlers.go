package handlers

import (
	"net/http"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/services"
	"weighbridge_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TicketHandler exposes the weighing lifecycle over HTTP.
type TicketHandler struct {
	ticketService *services.TicketService
}

func NewTicketHandler(ts *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ts}
}

// CreateTicket opens a new weighing ticket.
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req services.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	ticket, err := h.ticketService.CreateTicket(req)
	if err != nil {
		respondServiceError(c, err, "CreateTicket failed")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// CaptureTare records the empty-vehicle weighing.
func (h *TicketHandler) CaptureTare(c *gin.Context) {
	var req services.WeighingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}
	req.OperatorID = operatorID(c, req.OperatorID)

	ticket, err := h.ticketService.CaptureTare(c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "CaptureTare failed")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// CaptureGross records the loaded-vehicle weighing.
func (h *TicketHandler) CaptureGross(c *gin.Context) {
	var req services.WeighingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}
	req.OperatorID = operatorID(c, req.OperatorID)

	ticket, err := h.ticketService.CaptureGross(c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "CaptureGross failed")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// FinalizeTicket closes the weighing and settles stock. The body is optional
// quality and seal detail.
func (h *TicketHandler) FinalizeTicket(c *gin.Context) {
	var req services.FinalizeTicketRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
			return
		}
	}
	req.OperatorID = operatorID(c, req.OperatorID)

	ticket, err := h.ticketService.FinalizeTicket(c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "FinalizeTicket failed")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// VoidTicket cancels a ticket that has not settled.
func (h *TicketHandler) VoidTicket(c *gin.Context) {
	var req services.VoidTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}
	req.OperatorID = operatorID(c, req.OperatorID)

	ticket, err := h.ticketService.VoidTicket(c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "VoidTicket failed")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// MarkTicketSynced is called by the external synchronizer.
func (h *TicketHandler) MarkTicketSynced(c *gin.Context) {
	ticket, err := h.ticketService.MarkTicketSynced(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "MarkTicketSynced failed")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GetTicketByID returns one ticket.
func (h *TicketHandler) GetTicketByID(c *gin.Context) {
	ticket, err := h.ticketService.GetTicketByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "GetTicketByID failed")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GetTickets lists tickets with optional filters.
func (h *TicketHandler) GetTickets(c *gin.Context) {
	filters := models.TicketFilters{
		SiteID:    utils.NewNullString(c.Query("site_id")),
		OrderID:   utils.NewNullString(c.Query("order_id")),
		VehicleID: utils.NewNullString(c.Query("vehicle_id")),
	}

	if status := c.Query("status"); status != "" {
		ticketStatus := models.TicketStatus(status)
		filters.Status = &ticketStatus
	}
	if ticketType := c.Query("type"); ticketType != "" {
		t := models.TicketType(ticketType)
		if !models.IsValidTicketType(t) {
			utils.RespondValidationFailed(c, "type must be inbound or outbound")
			return
		}
		filters.Type = &t
	}
	filters.ActiveOnly = c.Query("active_only") == "true"

	tickets, err := h.ticketService.GetTickets(filters)
	if err != nil {
		respondServiceError(c, err, "GetTickets failed")
		return
	}
	c.JSON(http.StatusOK, tickets)
}
