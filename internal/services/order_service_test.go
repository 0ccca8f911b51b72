package services

import (
	"testing"

	"weighbridge_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderDefaultsToApproved(t *testing.T) {
	env := newTestEnv(t)

	order, err := env.orders.CreateOrder(CreateOrderRequest{
		OrderNumber:           "ORD-2026-0042",
		SiteID:                "site-1",
		Type:                  models.TicketTypeOutbound,
		ProductID:             "prod-iron-ore",
		OrderedQuantityTonnes: decimal.RequireFromString("500"),
		PricePerTonne:         decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusApproved, order.Status)
	require.NotEmpty(t, order.ID)

	loaded, err := env.orders.GetOrderByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, "ORD-2026-0042", loaded.OrderNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.CreateOrder(CreateOrderRequest{
		SiteID:    "site-1",
		Type:      models.TicketTypeOutbound,
		ProductID: "prod-iron-ore",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.orders.CreateOrder(CreateOrderRequest{
		OrderNumber: "ORD-2026-0001",
		SiteID:      "site-1",
		Type:        "sideways",
		ProductID:   "prod-iron-ore",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.orders.CreateOrder(CreateOrderRequest{
		OrderNumber:   "ORD-2026-0001",
		SiteID:        "site-1",
		Type:          models.TicketTypeInbound,
		ProductID:     "prod-iron-ore",
		PricePerTonne: decimal.RequireFromString("-1"),
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderRejectsDuplicateNumber(t *testing.T) {
	env := newTestEnv(t)

	req := CreateOrderRequest{
		OrderNumber: "ORD-2026-0001",
		SiteID:      "site-1",
		Type:        models.TicketTypeInbound,
		ProductID:   "prod-iron-ore",
	}
	_, err := env.orders.CreateOrder(req)
	require.NoError(t, err)

	_, err = env.orders.CreateOrder(req)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestGetOrdersFilters(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.CreateOrder(CreateOrderRequest{
		OrderNumber: "ORD-2026-0001",
		SiteID:      "site-1",
		Type:        models.TicketTypeInbound,
		ProductID:   "prod-iron-ore",
	})
	require.NoError(t, err)
	_, err = env.orders.CreateOrder(CreateOrderRequest{
		OrderNumber: "ORD-2026-0002",
		SiteID:      "site-2",
		Type:        models.TicketTypeOutbound,
		Status:      models.OrderStatusCompleted,
		ProductID:   "prod-coal",
	})
	require.NoError(t, err)

	siteID := "site-2"
	bySite, err := env.orders.GetOrders(models.OrderFilters{SiteID: &siteID})
	require.NoError(t, err)
	require.Len(t, bySite, 1)
	require.Equal(t, "ORD-2026-0002", bySite[0].OrderNumber)

	inbound := models.TicketTypeInbound
	byType, err := env.orders.GetOrders(models.OrderFilters{Type: &inbound})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	require.Equal(t, "ORD-2026-0001", byType[0].OrderNumber)

	_, err = env.orders.GetOrderByID("order_missing")
	require.ErrorIs(t, err, ErrOrderNotFound)
}
