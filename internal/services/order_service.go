package services

import (
	"errors"
	"fmt"
	"time"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/repositories"
	"weighbridge_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// OrderService accepts orders pushed in by the external order-management
// system and serves them read-only to ticket creation and the dashboards.
type OrderService struct {
	store repositories.Store
}

func NewOrderService(store repositories.Store) *OrderService {
	return &OrderService{store: store}
}

type CreateOrderRequest struct {
	OrderNumber           string             `json:"order_number"`
	SiteID                string             `json:"site_id"`
	Type                  models.TicketType  `json:"type"`
	Status                models.OrderStatus `json:"status"`
	ClientID              *string            `json:"client_id"`
	HaulierID             *string            `json:"haulier_id"`
	ProductID             string             `json:"product_id"`
	OrderedQuantityTonnes decimal.Decimal    `json:"ordered_quantity_tonnes"`
	PricePerTonne         decimal.Decimal    `json:"price_per_tonne"`
}

// CreateOrder stores an order pushed by the order-management system. Orders
// arrive approved unless the payload says otherwise.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if utils.IsEmpty(req.OrderNumber) || utils.IsEmpty(req.SiteID) || utils.IsEmpty(req.ProductID) {
		return nil, fmt.Errorf("%w: order_number, site_id and product_id are required", ErrValidation)
	}
	if !models.IsValidTicketType(req.Type) {
		return nil, fmt.Errorf("%w: type must be inbound or outbound", ErrValidation)
	}
	if req.OrderedQuantityTonnes.IsNegative() || req.PricePerTonne.IsNegative() {
		return nil, fmt.Errorf("%w: quantities and prices cannot be negative", ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusApproved
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:                    newID("order"),
		OrderNumber:           req.OrderNumber,
		SiteID:                req.SiteID,
		Type:                  req.Type,
		Status:                status,
		ClientID:              req.ClientID,
		HaulierID:             req.HaulierID,
		ProductID:             req.ProductID,
		OrderedQuantityTonnes: req.OrderedQuantityTonnes,
		PricePerTonne:         req.PricePerTonne,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.Orders().CreateOrder(order); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: order %s", ErrDuplicate, req.OrderNumber)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrderByID(orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetOrderByID(orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrders(filters models.OrderFilters) ([]models.Order, error) {
	return s.store.Orders().GetOrders(filters)
}
