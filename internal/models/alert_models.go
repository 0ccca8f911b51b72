package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertType classifies a stock alert.
type AlertType string

const (
	AlertTypeLowStock    AlertType = "low_stock"
	AlertTypeOverstock   AlertType = "overstock"
	AlertTypeDiscrepancy AlertType = "discrepancy"
)

// AlertSeverity orders alerts for display and escalation.
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// StockAlert is raised by the evaluator when a stockpile crosses a
// threshold. Acknowledge and resolve are independent: acknowledging an
// alert does not resolve it.
type StockAlert struct {
	ID          string `json:"id" db:"id"`
	StockpileID string `json:"stockpile_id" db:"stockpile_id"`
	SiteID      string `json:"site_id" db:"site_id"`
	ProductID   string `json:"product_id" db:"product_id"`

	Type     AlertType     `json:"type" db:"type"`
	Severity AlertSeverity `json:"severity" db:"severity"`
	Title    string        `json:"title" db:"title"`
	Message  string        `json:"message" db:"message"`

	ThresholdValue *decimal.Decimal `json:"threshold_value,omitempty" db:"threshold_value"`
	CurrentValue   decimal.Decimal  `json:"current_value" db:"current_value"`

	IsActive       bool       `json:"is_active" db:"is_active"`
	IsAcknowledged bool       `json:"is_acknowledged" db:"is_acknowledged"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`

	IsResolved      bool       `json:"is_resolved" db:"is_resolved"`
	ResolvedBy      *string    `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty" db:"resolution_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the alert.
func (a *StockAlert) Clone() *StockAlert {
	c := *a
	c.ThresholdValue = cloneDecimalPtr(a.ThresholdValue)
	c.AcknowledgedBy = cloneStringPtr(a.AcknowledgedBy)
	c.AcknowledgedAt = cloneTimePtr(a.AcknowledgedAt)
	c.ResolvedBy = cloneStringPtr(a.ResolvedBy)
	c.ResolvedAt = cloneTimePtr(a.ResolvedAt)
	c.ResolutionNotes = cloneStringPtr(a.ResolutionNotes)
	return &c
}

// AlertFilters narrows alert list queries.
type AlertFilters struct {
	SiteID      *string
	StockpileID *string
	Type        *AlertType
	ActiveOnly  bool
}
