package services

import (
	"sync"
	"testing"
	"time"

	"weighbridge_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAdjustmentAppendsMovement(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "500", "100", "900", "1000")

	notes := "monthly recount"
	movement, updated, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-37.25"),
		Reason:         models.AdjustmentReasonPhysicalCount,
		Notes:          &notes,
	})
	require.NoError(t, err)

	require.Equal(t, models.MovementTypeAdjustment, movement.Type)
	require.Equal(t, models.MovementDirectionOut, movement.Direction)
	require.True(t, movement.QuantityTonnes.Equal(decimal.RequireFromString("37.25")))
	require.True(t, movement.BalanceAfterTonnes.Equal(movement.BalanceBeforeTonnes.Add(movement.SignedQuantityTonnes)))
	require.True(t, updated.CurrentQuantityTonnes.Equal(movement.BalanceAfterTonnes))
	require.Equal(t, models.AdjustmentReasonPhysicalCount, *movement.Provenance.AdjustmentReason)
	require.Equal(t, "monthly recount", *movement.Provenance.AdjustmentNotes)
}

func TestAdjustmentValidation(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "500", "100", "900", "1000")

	_, _, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.Zero,
		Reason:         models.AdjustmentReasonSpillage,
	})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-10"),
		Reason:         "shrinkage",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    "stockpile_missing",
		QuantityTonnes: decimal.RequireFromString("-10"),
		Reason:         models.AdjustmentReasonSpillage,
	})
	require.ErrorIs(t, err, ErrStockpileNotFound)
}

func TestAdjustmentBalanceFloor(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "100", "10", "900", "1000")

	_, _, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-100.001"),
		Reason:         models.AdjustmentReasonTheft,
	})
	require.ErrorIs(t, err, ErrBalanceViolation)

	unchanged, err := env.store.Stockpiles().GetStockpileByID(sp.ID)
	require.NoError(t, err)
	require.True(t, unchanged.CurrentQuantityTonnes.Equal(decimal.RequireFromString("100")))

	movements, err := env.stock.GetMovements(models.MovementFilters{StockpileID: &sp.ID})
	require.NoError(t, err)
	require.Empty(t, movements)

	// Draining to exactly zero is allowed.
	_, updated, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-100"),
		Reason:         models.AdjustmentReasonSystemCorrection,
	})
	require.NoError(t, err)
	require.True(t, updated.CurrentQuantityTonnes.IsZero())
}

func TestLowStockAlertRaisedOnce(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "1000", "200", "5000", "6000")

	_, updated, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-850"),
		Reason:         models.AdjustmentReasonPhysicalCount,
	})
	require.NoError(t, err)
	require.True(t, updated.CurrentQuantityTonnes.Equal(decimal.RequireFromString("150")))
	require.True(t, updated.IsLowStock)

	// A second evaluator pass must not duplicate the alert.
	require.NoError(t, evaluateStockpileAlerts(env.store, updated, time.Now().UTC()))

	alerts, err := env.alerts.GetAlerts(models.AlertFilters{StockpileID: &sp.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertTypeLowStock, alerts[0].Type)
	require.True(t, alerts[0].IsActive)
	require.True(t, alerts[0].CurrentValue.Equal(decimal.RequireFromString("150")))
	require.True(t, alerts[0].ThresholdValue.Equal(decimal.RequireFromString("200")))
}

func TestLowStockSeverityTiers(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "1000", "200", "5000", "6000")

	// 150 is below the threshold but above half of it: warning.
	_, _, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-850"),
		Reason:         models.AdjustmentReasonEvaporationLoss,
	})
	require.NoError(t, err)

	alerts, err := env.alerts.GetAlerts(models.AlertFilters{StockpileID: &sp.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertSeverityWarning, alerts[0].Severity)

	// Falling below half the threshold escalates the same alert.
	_, _, err = env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-100"),
		Reason:         models.AdjustmentReasonEvaporationLoss,
	})
	require.NoError(t, err)

	alerts, err = env.alerts.GetAlerts(models.AlertFilters{StockpileID: &sp.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertSeverityCritical, alerts[0].Severity)
}

func TestAlertAutoResolves(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "1000", "200", "5000", "6000")

	_, _, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-850"),
		Reason:         models.AdjustmentReasonPhysicalCount,
	})
	require.NoError(t, err)

	_, _, err = env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("400"),
		Reason:         models.AdjustmentReasonPhysicalCount,
	})
	require.NoError(t, err)

	active, err := env.alerts.GetAlerts(models.AlertFilters{StockpileID: &sp.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := env.alerts.GetAlerts(models.AlertFilters{StockpileID: &sp.ID})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].IsResolved)
	require.NotNil(t, all[0].ResolvedAt)
}

func TestOverstockAlert(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "800", "100", "900", "1000")

	_, updated, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("250"),
		Reason:         models.AdjustmentReasonPhysicalCount,
	})
	require.NoError(t, err)
	require.True(t, updated.IsOverstock)

	alerts, err := env.alerts.GetAlerts(models.AlertFilters{StockpileID: &sp.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertTypeOverstock, alerts[0].Type)
	// 1050 exceeds capacity 1000.
	require.Equal(t, models.AlertSeverityCritical, alerts[0].Severity)
}

func TestConcurrentAdjustmentsSerialize(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "500", "100", "900", "1000")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, qty := range []string{"50", "-30"} {
		wg.Add(1)
		go func(qty string) {
			defer wg.Done()
			_, _, err := env.stock.CreateAdjustment(AdjustmentRequest{
				StockpileID:    sp.ID,
				QuantityTonnes: decimal.RequireFromString(qty),
				Reason:         models.AdjustmentReasonSystemCorrection,
			})
			errs <- err
		}(qty)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	updated, err := env.store.Stockpiles().GetStockpileByID(sp.ID)
	require.NoError(t, err)
	require.True(t, updated.CurrentQuantityTonnes.Equal(decimal.RequireFromString("520")),
		"expected 520, got %s", updated.CurrentQuantityTonnes)

	// The snapshots must chain: each balance-before equals the prior
	// balance-after, whichever order the adjustments landed in.
	movements, err := env.stock.GetMovements(models.MovementFilters{StockpileID: &sp.ID})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	later, earlier := movements[0], movements[1]
	require.True(t, earlier.BalanceBeforeTonnes.Equal(decimal.RequireFromString("500")))
	require.True(t, later.BalanceBeforeTonnes.Equal(earlier.BalanceAfterTonnes))
	require.True(t, later.BalanceAfterTonnes.Equal(decimal.RequireFromString("520")))
}

func TestTransferCreatesLinkedPair(t *testing.T) {
	env := newTestEnv(t)
	from := seedStockpile(t, env.store, "300", "50", "900", "1000")
	to := seedStockpile(t, env.store, "100", "50", "900", "1000")

	result, err := env.stock.CreateTransfer(TransferRequest{
		FromStockpileID: from.ID,
		ToStockpileID:   to.ID,
		QuantityTonnes:  decimal.RequireFromString("75"),
	})
	require.NoError(t, err)

	require.Equal(t, models.MovementTypeTransfer, result.Outbound.Type)
	require.Equal(t, models.MovementDirectionOut, result.Outbound.Direction)
	require.Equal(t, to.ID, *result.Outbound.Provenance.TransferStockpileID)
	require.Equal(t, from.ID, *result.Inbound.Provenance.TransferStockpileID)
	require.True(t, result.From.CurrentQuantityTonnes.Equal(decimal.RequireFromString("225")))
	require.True(t, result.To.CurrentQuantityTonnes.Equal(decimal.RequireFromString("175")))
}

func TestTransferValidation(t *testing.T) {
	env := newTestEnv(t)
	from := seedStockpile(t, env.store, "300", "50", "900", "1000")
	to := seedStockpile(t, env.store, "100", "50", "900", "1000")

	_, err := env.stock.CreateTransfer(TransferRequest{
		FromStockpileID: from.ID,
		ToStockpileID:   from.ID,
		QuantityTonnes:  decimal.RequireFromString("10"),
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.stock.CreateTransfer(TransferRequest{
		FromStockpileID: from.ID,
		ToStockpileID:   to.ID,
		QuantityTonnes:  decimal.RequireFromString("-10"),
	})
	require.ErrorIs(t, err, ErrValidation)

	other := seedStockpile(t, env.store, "100", "50", "900", "1000")
	other.ProductID = "prod-coal"
	require.NoError(t, env.store.Stockpiles().UpdateStockpile(other, other.Version))
	_, err = env.stock.CreateTransfer(TransferRequest{
		FromStockpileID: from.ID,
		ToStockpileID:   other.ID,
		QuantityTonnes:  decimal.RequireFromString("10"),
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestTransferOverdrawRollsBackBothLegs(t *testing.T) {
	env := newTestEnv(t)
	from := seedStockpile(t, env.store, "50", "10", "900", "1000")
	to := seedStockpile(t, env.store, "100", "10", "900", "1000")

	_, err := env.stock.CreateTransfer(TransferRequest{
		FromStockpileID: from.ID,
		ToStockpileID:   to.ID,
		QuantityTonnes:  decimal.RequireFromString("60"),
	})
	require.ErrorIs(t, err, ErrBalanceViolation)

	fromReloaded, err := env.store.Stockpiles().GetStockpileByID(from.ID)
	require.NoError(t, err)
	require.True(t, fromReloaded.CurrentQuantityTonnes.Equal(decimal.RequireFromString("50")))
	toReloaded, err := env.store.Stockpiles().GetStockpileByID(to.ID)
	require.NoError(t, err)
	require.True(t, toReloaded.CurrentQuantityTonnes.Equal(decimal.RequireFromString("100")))

	movements, err := env.stock.GetMovements(models.MovementFilters{SiteID: &from.SiteID})
	require.NoError(t, err)
	require.Empty(t, movements)
}

func TestMarkMovementSynced(t *testing.T) {
	env := newTestEnv(t)
	sp := seedStockpile(t, env.store, "500", "100", "900", "1000")

	movement, _, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("10"),
		Reason:         models.AdjustmentReasonOther,
	})
	require.NoError(t, err)
	require.Equal(t, models.SyncStatusPending, movement.SyncStatus)

	require.NoError(t, env.stock.MarkMovementSynced(movement.ID))

	movements, err := env.stock.GetMovements(models.MovementFilters{StockpileID: &sp.ID})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, models.SyncStatusSynced, movements[0].SyncStatus)

	require.ErrorIs(t, env.stock.MarkMovementSynced("movement_missing"), ErrMovementNotFound)
}
