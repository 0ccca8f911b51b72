package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus mirrors the external order-management lifecycle. This service
// only reads orders; the status is informational.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusApproved   OrderStatus = "approved"
	OrderStatusCheckedIn  OrderStatus = "checked_in"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsWeighable reports whether tickets may still be raised against the order.
func (s OrderStatus) IsWeighable() bool {
	switch s {
	case OrderStatusApproved, OrderStatusCheckedIn, OrderStatusInProgress:
		return true
	default:
		return false
	}
}

// Order is an approved commercial intent to move a quantity of product in or
// out of a site. Owned and mutated by the external order-management system;
// the weighing core reads it for pricing and direction.
type Order struct {
	ID          string      `json:"id" db:"id"`
	OrderNumber string      `json:"order_number" db:"order_number"`
	SiteID      string      `json:"site_id" db:"site_id"`
	Type        TicketType  `json:"type" db:"type"`
	Status      OrderStatus `json:"status" db:"status"`

	ClientID  *string `json:"client_id,omitempty" db:"client_id"`
	HaulierID *string `json:"haulier_id,omitempty" db:"haulier_id"`
	ProductID string  `json:"product_id" db:"product_id"`

	OrderedQuantityTonnes decimal.Decimal `json:"ordered_quantity_tonnes" db:"ordered_quantity_tonnes"`
	PricePerTonne         decimal.Decimal `json:"price_per_tonne" db:"price_per_tonne"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.ClientID = cloneStringPtr(o.ClientID)
	c.HaulierID = cloneStringPtr(o.HaulierID)
	return &c
}

// OrderFilters narrows order list queries.
type OrderFilters struct {
	SiteID *string
	Status *OrderStatus
	Type   *TicketType
}
