package handlers

import (
	"net/http"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/services"
	"weighbridge_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// StockHandler exposes the ledger and stockpile projections over HTTP.
type StockHandler struct {
	stockService *services.StockService
}

func NewStockHandler(ss *services.StockService) *StockHandler {
	return &StockHandler{stockService: ss}
}

// stockpileResponse augments the stored projection with the read-side
// conveniences the dashboards consume.
type stockpileResponse struct {
	*models.Stockpile
	UtilizationPercentage decimal.Decimal `json:"utilization_percentage"`
	TotalValue            decimal.Decimal `json:"total_value"`
}

func toStockpileResponse(s *models.Stockpile) stockpileResponse {
	return stockpileResponse{
		Stockpile:             s,
		UtilizationPercentage: s.UtilizationPercentage(),
		TotalValue:            s.TotalValue(),
	}
}

// adjustmentResponse pairs the appended movement with the updated projection.
type adjustmentResponse struct {
	Movement  *models.StockMovement `json:"movement"`
	Stockpile stockpileResponse     `json:"stockpile"`
}

// CreateAdjustment appends a manual correction to the ledger.
func (h *StockHandler) CreateAdjustment(c *gin.Context) {
	var req services.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}
	req.OperatorID = operatorID(c, req.OperatorID)

	movement, stockpile, err := h.stockService.CreateAdjustment(req)
	if err != nil {
		respondServiceError(c, err, "CreateAdjustment failed")
		return
	}
	c.JSON(http.StatusCreated, adjustmentResponse{
		Movement:  movement,
		Stockpile: toStockpileResponse(stockpile),
	})
}

// CreateTransfer moves stock between two stockpiles of the same product.
func (h *StockHandler) CreateTransfer(c *gin.Context) {
	var req services.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}
	req.OperatorID = operatorID(c, req.OperatorID)

	result, err := h.stockService.CreateTransfer(req)
	if err != nil {
		respondServiceError(c, err, "CreateTransfer failed")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetStockpileByID returns one stockpile projection.
func (h *StockHandler) GetStockpileByID(c *gin.Context) {
	stockpile, err := h.stockService.GetStockpileByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "GetStockpileByID failed")
		return
	}
	c.JSON(http.StatusOK, toStockpileResponse(stockpile))
}

// GetStockpiles lists stockpiles with optional filters.
func (h *StockHandler) GetStockpiles(c *gin.Context) {
	filters := models.StockpileFilters{
		SiteID:    utils.NewNullString(c.Query("site_id")),
		ProductID: utils.NewNullString(c.Query("product_id")),
	}

	if status := c.Query("status"); status != "" {
		s := models.StockpileStatus(status)
		filters.Status = &s
	}
	filters.LowStockOnly = c.Query("low_stock_only") == "true"

	stockpiles, err := h.stockService.GetStockpiles(filters)
	if err != nil {
		respondServiceError(c, err, "GetStockpiles failed")
		return
	}

	responses := make([]stockpileResponse, 0, len(stockpiles))
	for i := range stockpiles {
		responses = append(responses, toStockpileResponse(&stockpiles[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetMovements lists ledger entries with optional filters.
func (h *StockHandler) GetMovements(c *gin.Context) {
	filters := models.MovementFilters{
		StockpileID: utils.NewNullString(c.Query("stockpile_id")),
		SiteID:      utils.NewNullString(c.Query("site_id")),
		TicketID:    utils.NewNullString(c.Query("ticket_id")),
	}
	if movementType := c.Query("type"); movementType != "" {
		t := models.MovementType(movementType)
		filters.Type = &t
	}

	movements, err := h.stockService.GetMovements(filters)
	if err != nil {
		respondServiceError(c, err, "GetMovements failed")
		return
	}
	c.JSON(http.StatusOK, movements)
}

// MarkMovementSynced is called by the external synchronizer.
func (h *StockHandler) MarkMovementSynced(c *gin.Context) {
	if err := h.stockService.MarkMovementSynced(c.Param("id")); err != nil {
		respondServiceError(c, err, "MarkMovementSynced failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synced"})
}
