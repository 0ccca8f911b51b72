package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StockpileStatus is the operational state of a stockpile.
type StockpileStatus string

const (
	StockpileStatusActive   StockpileStatus = "active"
	StockpileStatusInactive StockpileStatus = "inactive"
	StockpileStatusDepleted StockpileStatus = "depleted"
)

// Stockpile is a tracked physical inventory of one product at one site.
// CurrentQuantityTonnes is a projection of the movement ledger and is never
// mutated directly; every change flows through a StockMovement append.
type Stockpile struct {
	ID        string `json:"id" db:"id"`
	SiteID    string `json:"site_id" db:"site_id"`
	ProductID string `json:"product_id" db:"product_id"`

	Name     string  `json:"name" db:"name"`
	Code     string  `json:"code" db:"code"`
	Location *string `json:"location,omitempty" db:"location"`

	Status StockpileStatus `json:"status" db:"status"`

	CapacityTonnes          decimal.Decimal `json:"capacity_tonnes" db:"capacity_tonnes"`
	CurrentQuantityTonnes   decimal.Decimal `json:"current_quantity_tonnes" db:"current_quantity_tonnes"`
	ReservedQuantityTonnes  decimal.Decimal `json:"reserved_quantity_tonnes" db:"reserved_quantity_tonnes"`
	AvailableQuantityTonnes decimal.Decimal `json:"available_quantity_tonnes" db:"available_quantity_tonnes"`

	LowStockThresholdTonnes  decimal.Decimal `json:"low_stock_threshold_tonnes" db:"low_stock_threshold_tonnes"`
	HighStockThresholdTonnes decimal.Decimal `json:"high_stock_threshold_tonnes" db:"high_stock_threshold_tonnes"`
	IsLowStock               bool            `json:"is_low_stock" db:"is_low_stock"`
	IsOverstock              bool            `json:"is_overstock" db:"is_overstock"`

	ValuePerTonne decimal.Decimal `json:"value_per_tonne" db:"value_per_tonne"`

	Notes *string `json:"notes,omitempty" db:"notes"`

	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	LastMovementAt *time.Time `json:"last_movement_at,omitempty" db:"last_movement_at"`

	Version int64 `json:"version" db:"version"`
}

// ApplyBalance sets the projected quantity fields and threshold flags from a
// new ledger balance. This is the only place balances are written.
func (s *Stockpile) ApplyBalance(newBalance decimal.Decimal, at time.Time) {
	s.CurrentQuantityTonnes = newBalance
	s.AvailableQuantityTonnes = newBalance.Sub(s.ReservedQuantityTonnes)
	s.IsLowStock = newBalance.LessThan(s.LowStockThresholdTonnes)
	s.IsOverstock = newBalance.GreaterThan(s.HighStockThresholdTonnes)
	s.LastMovementAt = &at
	s.UpdatedAt = at
}

// UtilizationPercentage is a read-side convenience for dashboards.
func (s *Stockpile) UtilizationPercentage() decimal.Decimal {
	if s.CapacityTonnes.IsZero() {
		return decimal.Zero
	}
	return s.CurrentQuantityTonnes.Div(s.CapacityTonnes).Mul(decimal.NewFromInt(100)).Round(1)
}

// TotalValue is the projected stock value at the stockpile's value per tonne.
func (s *Stockpile) TotalValue() decimal.Decimal {
	return s.CurrentQuantityTonnes.Mul(s.ValuePerTonne).Round(2)
}

// Clone returns a deep copy of the stockpile.
func (s *Stockpile) Clone() *Stockpile {
	c := *s
	c.Location = cloneStringPtr(s.Location)
	c.Notes = cloneStringPtr(s.Notes)
	c.LastMovementAt = cloneTimePtr(s.LastMovementAt)
	return &c
}

// StockpileFilters narrows stockpile list queries.
type StockpileFilters struct {
	SiteID       *string
	ProductID    *string
	Status       *StockpileStatus
	LowStockOnly bool
}

// MovementType classifies a ledger entry.
type MovementType string

const (
	MovementTypeInbound    MovementType = "inbound"
	MovementTypeOutbound   MovementType = "outbound"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeTransfer   MovementType = "transfer"
)

// MovementDirection is derived from the sign of the signed quantity.
type MovementDirection string

const (
	MovementDirectionIn  MovementDirection = "in"
	MovementDirectionOut MovementDirection = "out"
)

// AdjustmentReason is the closed enumeration of manual adjustment causes.
type AdjustmentReason string

const (
	AdjustmentReasonPhysicalCount    AdjustmentReason = "physical_count"
	AdjustmentReasonEvaporationLoss  AdjustmentReason = "evaporation_loss"
	AdjustmentReasonSpillage         AdjustmentReason = "spillage"
	AdjustmentReasonQualityDowngrade AdjustmentReason = "quality_downgrade"
	AdjustmentReasonSystemCorrection AdjustmentReason = "system_correction"
	AdjustmentReasonTheft            AdjustmentReason = "theft"
	AdjustmentReasonOther            AdjustmentReason = "other"
)

// IsValidAdjustmentReason reports whether r belongs to the closed enumeration.
func IsValidAdjustmentReason(r AdjustmentReason) bool {
	switch r {
	case AdjustmentReasonPhysicalCount, AdjustmentReasonEvaporationLoss,
		AdjustmentReasonSpillage, AdjustmentReasonQualityDowngrade,
		AdjustmentReasonSystemCorrection, AdjustmentReasonTheft,
		AdjustmentReasonOther:
		return true
	default:
		return false
	}
}

// MovementProvenance is a tagged union: exactly one provenance kind is set.
// Ticket-derived movements carry TicketID (and optionally OrderID),
// adjustments carry AdjustmentReason, transfers carry TransferStockpileID.
type MovementProvenance struct {
	TicketID            *string           `json:"ticket_id,omitempty" db:"ticket_id"`
	OrderID             *string           `json:"order_id,omitempty" db:"order_id"`
	AdjustmentReason    *AdjustmentReason `json:"adjustment_reason,omitempty" db:"adjustment_reason"`
	AdjustmentNotes     *string           `json:"adjustment_notes,omitempty" db:"adjustment_notes"`
	TransferStockpileID *string           `json:"transfer_stockpile_id,omitempty" db:"transfer_stockpile_id"`
}

// TicketProvenance builds provenance for a movement settled from a finalized
// ticket.
func TicketProvenance(ticketID string, orderID *string) MovementProvenance {
	return MovementProvenance{TicketID: &ticketID, OrderID: cloneStringPtr(orderID)}
}

// AdjustmentProvenance builds provenance for a manual stock adjustment.
func AdjustmentProvenance(reason AdjustmentReason, notes *string) MovementProvenance {
	return MovementProvenance{AdjustmentReason: &reason, AdjustmentNotes: cloneStringPtr(notes)}
}

// TransferProvenance builds provenance for one leg of a stockpile transfer,
// back-referencing the stockpile on the other side.
func TransferProvenance(otherStockpileID string) MovementProvenance {
	return MovementProvenance{TransferStockpileID: &otherStockpileID}
}

// Kind returns the movement type implied by the provenance, given the ticket
// direction for ticket-derived movements.
func (p MovementProvenance) Kind(ticketType TicketType) MovementType {
	switch {
	case p.TicketID != nil:
		if ticketType == TicketTypeInbound {
			return MovementTypeInbound
		}
		return MovementTypeOutbound
	case p.AdjustmentReason != nil:
		return MovementTypeAdjustment
	default:
		return MovementTypeTransfer
	}
}

// Validate enforces the exactly-one-kind rule at construction time.
func (p MovementProvenance) Validate() error {
	kinds := 0
	if p.TicketID != nil {
		kinds++
	}
	if p.AdjustmentReason != nil {
		kinds++
	}
	if p.TransferStockpileID != nil {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("movement provenance must carry exactly one kind, got %d", kinds)
	}
	if p.OrderID != nil && p.TicketID == nil {
		return fmt.Errorf("order reference is only valid on ticket-derived movements")
	}
	if p.AdjustmentNotes != nil && p.AdjustmentReason == nil {
		return fmt.Errorf("adjustment notes are only valid on adjustments")
	}
	return nil
}

func (p MovementProvenance) clone() MovementProvenance {
	c := p
	c.TicketID = cloneStringPtr(p.TicketID)
	c.OrderID = cloneStringPtr(p.OrderID)
	c.AdjustmentNotes = cloneStringPtr(p.AdjustmentNotes)
	c.TransferStockpileID = cloneStringPtr(p.TransferStockpileID)
	if p.AdjustmentReason != nil {
		r := *p.AdjustmentReason
		c.AdjustmentReason = &r
	}
	return c
}

// StockMovement is an append-only ledger entry: a signed quantity change
// against one stockpile with before/after balance snapshots. Movements are
// never updated or deleted; corrections are new movements.
type StockMovement struct {
	ID          string `json:"id" db:"id"`
	StockpileID string `json:"stockpile_id" db:"stockpile_id"`
	SiteID      string `json:"site_id" db:"site_id"`
	ProductID   string `json:"product_id" db:"product_id"`

	Type      MovementType      `json:"type" db:"type"`
	Direction MovementDirection `json:"direction" db:"direction"`

	QuantityTonnes       decimal.Decimal `json:"quantity_tonnes" db:"quantity_tonnes"`
	SignedQuantityTonnes decimal.Decimal `json:"signed_quantity_tonnes" db:"signed_quantity_tonnes"`
	BalanceBeforeTonnes  decimal.Decimal `json:"balance_before_tonnes" db:"balance_before_tonnes"`
	BalanceAfterTonnes   decimal.Decimal `json:"balance_after_tonnes" db:"balance_after_tonnes"`

	Provenance MovementProvenance `json:"provenance"`

	CreatedBy *string   `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	SyncStatus SyncStatus `json:"sync_status" db:"sync_status"`
}

// Clone returns a deep copy of the movement.
func (m *StockMovement) Clone() *StockMovement {
	c := *m
	c.Provenance = m.Provenance.clone()
	c.CreatedBy = cloneStringPtr(m.CreatedBy)
	return &c
}

// MovementFilters narrows movement list queries.
type MovementFilters struct {
	StockpileID *string
	SiteID      *string
	Type        *MovementType
	TicketID    *string
}
