package services

import (
	"errors"
	"fmt"
	"time"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// appendMovement writes one ledger entry against the stockpile and projects
// the new balance onto it, inside the caller's transaction. The caller must
// hold the stockpile lock and have loaded sp within the current unit of work.
func appendMovement(tx repositories.Store, sp *models.Stockpile, signedQuantity decimal.Decimal,
	movementType models.MovementType, provenance models.MovementProvenance,
	createdBy *string, at time.Time) (*models.StockMovement, error) {

	balanceBefore := sp.CurrentQuantityTonnes
	balanceAfter := balanceBefore.Add(signedQuantity)
	if balanceAfter.IsNegative() {
		return nil, fmt.Errorf("%w: stockpile %s holds %s t, movement of %s t would overdraw it",
			ErrBalanceViolation, sp.ID, balanceBefore.String(), signedQuantity.String())
	}

	direction := models.MovementDirectionIn
	if signedQuantity.IsNegative() {
		direction = models.MovementDirectionOut
	}

	movement := &models.StockMovement{
		ID:          newID("movement"),
		StockpileID: sp.ID,
		SiteID:      sp.SiteID,
		ProductID:   sp.ProductID,

		Type:      movementType,
		Direction: direction,

		QuantityTonnes:       signedQuantity.Abs(),
		SignedQuantityTonnes: signedQuantity,
		BalanceBeforeTonnes:  balanceBefore,
		BalanceAfterTonnes:   balanceAfter,

		Provenance: provenance,
		CreatedBy:  createdBy,
		CreatedAt:  at,
		SyncStatus: models.SyncStatusPending,
	}

	if err := tx.StockMovements().CreateMovement(movement); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrWriteConflict, err)
		}
		return nil, err
	}

	expectedVersion := sp.Version
	sp.ApplyBalance(balanceAfter, at)
	if err := tx.Stockpiles().UpdateStockpile(sp, expectedVersion); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: stockpile %s", ErrWriteConflict, sp.ID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStockpileNotFound, sp.ID)
		}
		return nil, err
	}
	return movement, nil
}

// evaluateStockpileAlerts re-checks the stockpile's threshold flags after a
// ledger append, raising low_stock/overstock alerts idempotently and
// auto-resolving any whose condition no longer holds. Runs outside the
// append's transaction; the flags on the stockpile make it safe to rerun.
func evaluateStockpileAlerts(store repositories.Store, sp *models.Stockpile, at time.Time) error {
	checks := []struct {
		alertType models.AlertType
		firing    bool
		threshold decimal.Decimal
		severity  models.AlertSeverity
		title     string
		message   string
	}{
		{
			alertType: models.AlertTypeLowStock,
			firing:    sp.IsLowStock,
			threshold: sp.LowStockThresholdTonnes,
			severity:  lowStockSeverity(sp),
			title:     fmt.Sprintf("Low stock: %s", sp.Name),
			message: fmt.Sprintf("Stockpile %s is at %s t, below the low stock threshold of %s t",
				sp.Code, sp.CurrentQuantityTonnes.String(), sp.LowStockThresholdTonnes.String()),
		},
		{
			alertType: models.AlertTypeOverstock,
			firing:    sp.IsOverstock,
			threshold: sp.HighStockThresholdTonnes,
			severity:  overstockSeverity(sp),
			title:     fmt.Sprintf("Overstock: %s", sp.Name),
			message: fmt.Sprintf("Stockpile %s is at %s t, above the high stock threshold of %s t",
				sp.Code, sp.CurrentQuantityTonnes.String(), sp.HighStockThresholdTonnes.String()),
		},
	}

	for _, check := range checks {
		existing, err := store.Alerts().FindActiveAlert(sp.ID, check.alertType)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		switch {
		case check.firing && existing == nil:
			threshold := check.threshold
			alert := &models.StockAlert{
				ID:             newID("alert"),
				StockpileID:    sp.ID,
				SiteID:         sp.SiteID,
				ProductID:      sp.ProductID,
				Type:           check.alertType,
				Severity:       check.severity,
				Title:          check.title,
				Message:        check.message,
				ThresholdValue: &threshold,
				CurrentValue:   sp.CurrentQuantityTonnes,
				IsActive:       true,
				CreatedAt:      at,
				UpdatedAt:      at,
			}
			if err := store.Alerts().CreateAlert(alert); err != nil {
				return err
			}

		case check.firing && existing != nil:
			existing.Severity = check.severity
			existing.Message = check.message
			existing.CurrentValue = sp.CurrentQuantityTonnes
			existing.UpdatedAt = at
			if err := store.Alerts().UpdateAlert(existing); err != nil {
				return err
			}

		case !check.firing && existing != nil:
			notes := "Condition cleared by subsequent stock movement"
			existing.IsActive = false
			existing.IsResolved = true
			existing.ResolvedAt = &at
			existing.ResolutionNotes = &notes
			existing.CurrentValue = sp.CurrentQuantityTonnes
			existing.UpdatedAt = at
			if err := store.Alerts().UpdateAlert(existing); err != nil {
				return err
			}
		}
	}
	return nil
}

func lowStockSeverity(sp *models.Stockpile) models.AlertSeverity {
	if sp.CurrentQuantityTonnes.LessThan(sp.LowStockThresholdTonnes.Div(two)) {
		return models.AlertSeverityCritical
	}
	return models.AlertSeverityWarning
}

func overstockSeverity(sp *models.Stockpile) models.AlertSeverity {
	if sp.CurrentQuantityTonnes.GreaterThan(sp.CapacityTonnes) {
		return models.AlertSeverityCritical
	}
	return models.AlertSeverityWarning
}
