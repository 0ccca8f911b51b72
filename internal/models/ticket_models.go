package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus is the lifecycle state of a weighing ticket.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "open"
	TicketStatusTareCaptured  TicketStatus = "tare_captured"
	TicketStatusGrossCaptured TicketStatus = "gross_captured"
	TicketStatusFinalized     TicketStatus = "finalized"
	TicketStatusVoided        TicketStatus = "voided"
)

// TicketType determines whether material is moving into or out of the site.
type TicketType string

const (
	TicketTypeInbound  TicketType = "inbound"
	TicketTypeOutbound TicketType = "outbound"
)

// SyncStatus marks whether a locally-mutated record has been propagated to
// the external system of record.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
)

// ticketTransitions is the allowed transition table. Voiding is handled
// separately: it is reachable from any non-terminal state.
var ticketTransitions = map[TicketStatus]TicketStatus{
	TicketStatusOpen:          TicketStatusTareCaptured,
	TicketStatusTareCaptured:  TicketStatusGrossCaptured,
	TicketStatusGrossCaptured: TicketStatusFinalized,
}

// CanTransition reports whether a ticket may move from one state to the next
// along the weighing sequence.
func CanTransition(from, to TicketStatus) bool {
	if to == TicketStatusVoided {
		return !IsTerminalTicketStatus(from)
	}
	return ticketTransitions[from] == to
}

// IsTerminalTicketStatus reports whether the state admits no further
// transitions.
func IsTerminalTicketStatus(s TicketStatus) bool {
	return s == TicketStatusFinalized || s == TicketStatusVoided
}

// IsValidTicketType reports whether t is a known ticket direction.
func IsValidTicketType(t TicketType) bool {
	return t == TicketTypeInbound || t == TicketTypeOutbound
}

// WeighingCapture records the provenance of a single weighbridge reading.
type WeighingCapture struct {
	WeightKg      int64      `json:"weight_kg"`
	CapturedAt    *time.Time `json:"captured_at"`
	WeighbridgeID *string    `json:"weighbridge_id,omitempty"`
	OperatorID    *string    `json:"operator_id,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
}

// Ticket is a single vehicle weighing event from creation to finalization
// or void. It is the unit of atomicity for stock settlement.
type Ticket struct {
	ID           string       `json:"id" db:"id"`
	TicketNumber string       `json:"ticket_number" db:"ticket_number"`
	OrderID      *string      `json:"order_id,omitempty" db:"order_id"`
	SiteID       string       `json:"site_id" db:"site_id"`
	Type         TicketType   `json:"type" db:"type"`
	Status       TicketStatus `json:"status" db:"status"`

	VehicleID string `json:"vehicle_id" db:"vehicle_id"`
	DriverID  string `json:"driver_id" db:"driver_id"`
	ProductID string `json:"product_id" db:"product_id"`

	// Weighings. Gross is never present without tare.
	TareWeightKg      *int64     `json:"tare_weight_kg,omitempty" db:"tare_weight_kg"`
	TareCapturedAt    *time.Time `json:"tare_captured_at,omitempty" db:"tare_captured_at"`
	TareWeighbridgeID *string    `json:"tare_weighbridge_id,omitempty" db:"tare_weighbridge_id"`
	TareOperatorID    *string    `json:"tare_operator_id,omitempty" db:"tare_operator_id"`
	TareImageURL      *string    `json:"tare_image_url,omitempty" db:"tare_image_url"`

	GrossWeightKg      *int64     `json:"gross_weight_kg,omitempty" db:"gross_weight_kg"`
	GrossCapturedAt    *time.Time `json:"gross_captured_at,omitempty" db:"gross_captured_at"`
	GrossWeighbridgeID *string    `json:"gross_weighbridge_id,omitempty" db:"gross_weighbridge_id"`
	GrossOperatorID    *string    `json:"gross_operator_id,omitempty" db:"gross_operator_id"`
	GrossImageURL      *string    `json:"gross_image_url,omitempty" db:"gross_image_url"`

	// Derived at finalization, never recomputed afterwards.
	NetWeightKg     *int64           `json:"net_weight_kg,omitempty" db:"net_weight_kg"`
	NetWeightTonnes *decimal.Decimal `json:"net_weight_tonnes,omitempty" db:"net_weight_tonnes"`
	PricePerTonne   decimal.Decimal  `json:"price_per_tonne" db:"price_per_tonne"`
	TotalValue      *decimal.Decimal `json:"total_value,omitempty" db:"total_value"`

	// Quality and seal details captured at finalization.
	MoisturePercentage *float64 `json:"moisture_percentage,omitempty" db:"moisture_percentage"`
	QualityGrade       *string  `json:"quality_grade,omitempty" db:"quality_grade"`
	QualityNotes       *string  `json:"quality_notes,omitempty" db:"quality_notes"`
	SealNumber         *string  `json:"seal_number,omitempty" db:"seal_number"`

	Notes *string `json:"notes,omitempty" db:"notes"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty" db:"finalized_at"`
	VoidedAt    *time.Time `json:"voided_at,omitempty" db:"voided_at"`
	VoidedBy    *string    `json:"voided_by,omitempty" db:"voided_by"`
	VoidReason  *string    `json:"void_reason,omitempty" db:"void_reason"`

	SyncStatus SyncStatus `json:"sync_status" db:"sync_status"`

	// Version supports optimistic concurrency; incremented on every write.
	Version int64 `json:"version" db:"version"`
}

// Clone returns a deep copy so callers cannot alias store-held state.
func (t *Ticket) Clone() *Ticket {
	c := *t
	c.OrderID = cloneStringPtr(t.OrderID)
	c.TareWeightKg = cloneInt64Ptr(t.TareWeightKg)
	c.TareCapturedAt = cloneTimePtr(t.TareCapturedAt)
	c.TareWeighbridgeID = cloneStringPtr(t.TareWeighbridgeID)
	c.TareOperatorID = cloneStringPtr(t.TareOperatorID)
	c.TareImageURL = cloneStringPtr(t.TareImageURL)
	c.GrossWeightKg = cloneInt64Ptr(t.GrossWeightKg)
	c.GrossCapturedAt = cloneTimePtr(t.GrossCapturedAt)
	c.GrossWeighbridgeID = cloneStringPtr(t.GrossWeighbridgeID)
	c.GrossOperatorID = cloneStringPtr(t.GrossOperatorID)
	c.GrossImageURL = cloneStringPtr(t.GrossImageURL)
	c.NetWeightKg = cloneInt64Ptr(t.NetWeightKg)
	c.NetWeightTonnes = cloneDecimalPtr(t.NetWeightTonnes)
	c.TotalValue = cloneDecimalPtr(t.TotalValue)
	c.MoisturePercentage = cloneFloat64Ptr(t.MoisturePercentage)
	c.QualityGrade = cloneStringPtr(t.QualityGrade)
	c.QualityNotes = cloneStringPtr(t.QualityNotes)
	c.SealNumber = cloneStringPtr(t.SealNumber)
	c.Notes = cloneStringPtr(t.Notes)
	c.FinalizedAt = cloneTimePtr(t.FinalizedAt)
	c.VoidedAt = cloneTimePtr(t.VoidedAt)
	c.VoidedBy = cloneStringPtr(t.VoidedBy)
	c.VoidReason = cloneStringPtr(t.VoidReason)
	return &c
}

// TicketFilters narrows ticket list queries.
type TicketFilters struct {
	SiteID     *string
	OrderID    *string
	VehicleID  *string
	Status     *TicketStatus
	Type       *TicketType
	ActiveOnly bool
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64Ptr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat64Ptr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneDecimalPtr(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
