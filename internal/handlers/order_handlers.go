package handlers

import (
	"net/http"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/services"
	"weighbridge_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler accepts orders pushed by the external order-management system
// and serves them to ticket creation and the dashboards.
type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(os *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateOrder stores a pushed order.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(req)
	if err != nil {
		respondServiceError(c, err, "CreateOrder failed")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrderByID returns one order.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "GetOrderByID failed")
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrders lists orders with optional filters.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	filters := models.OrderFilters{
		SiteID: utils.NewNullString(c.Query("site_id")),
	}

	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		filters.Status = &s
	}
	if orderType := c.Query("type"); orderType != "" {
		t := models.TicketType(orderType)
		if !models.IsValidTicketType(t) {
			utils.RespondValidationFailed(c, "type must be inbound or outbound")
			return
		}
		filters.Type = &t
	}

	orders, err := h.orderService.GetOrders(filters)
	if err != nil {
		respondServiceError(c, err, "GetOrders failed")
		return
	}
	c.JSON(http.StatusOK, orders)
}
