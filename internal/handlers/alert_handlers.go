package handlers

import (
	"net/http"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/services"
	"weighbridge_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AlertHandler exposes the alert acknowledge/resolve lifecycle over HTTP.
type AlertHandler struct {
	alertService *services.AlertService
}

func NewAlertHandler(as *services.AlertService) *AlertHandler {
	return &AlertHandler{alertService: as}
}

type alertActionRequest struct {
	OperatorID string  `json:"operator_id"`
	Notes      *string `json:"notes"`
}

// AcknowledgeAlert marks an alert as seen by an operator.
func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	var req alertActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
			return
		}
	}
	operator := c.GetString("operatorID")
	if operator == "" {
		operator = req.OperatorID
	}

	alert, err := h.alertService.AcknowledgeAlert(c.Param("id"), operator)
	if err != nil {
		respondServiceError(c, err, "AcknowledgeAlert failed")
		return
	}
	c.JSON(http.StatusOK, alert)
}

// ResolveAlert closes an alert by operator action.
func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	var req alertActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
			return
		}
	}
	operator := c.GetString("operatorID")
	if operator == "" {
		operator = req.OperatorID
	}

	alert, err := h.alertService.ResolveAlert(c.Param("id"), operator, services.ResolveAlertRequest{Notes: req.Notes})
	if err != nil {
		respondServiceError(c, err, "ResolveAlert failed")
		return
	}
	c.JSON(http.StatusOK, alert)
}

// GetAlertByID returns one alert.
func (h *AlertHandler) GetAlertByID(c *gin.Context) {
	alert, err := h.alertService.GetAlertByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "GetAlertByID failed")
		return
	}
	c.JSON(http.StatusOK, alert)
}

// GetAlerts lists alerts with optional filters.
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	filters := models.AlertFilters{
		SiteID:      utils.NewNullString(c.Query("site_id")),
		StockpileID: utils.NewNullString(c.Query("stockpile_id")),
	}

	if alertType := c.Query("type"); alertType != "" {
		t := models.AlertType(alertType)
		filters.Type = &t
	}
	filters.ActiveOnly = c.Query("active_only") == "true"

	alerts, err := h.alertService.GetAlerts(filters)
	if err != nil {
		respondServiceError(c, err, "GetAlerts failed")
		return
	}
	c.JSON(http.StatusOK, alerts)
}
