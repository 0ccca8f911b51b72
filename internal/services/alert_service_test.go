package services

import (
	"testing"

	"weighbridge_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// raiseLowStockAlert drops a stockpile below its threshold and returns the
// alert the evaluator raised for it.
func raiseLowStockAlert(t *testing.T, env *testEnv) *models.StockAlert {
	t.Helper()
	sp := seedStockpile(t, env.store, "1000", "200", "5000", "6000")
	_, _, err := env.stock.CreateAdjustment(AdjustmentRequest{
		StockpileID:    sp.ID,
		QuantityTonnes: decimal.RequireFromString("-850"),
		Reason:         models.AdjustmentReasonPhysicalCount,
	})
	require.NoError(t, err)

	alerts, err := env.alerts.GetAlerts(models.AlertFilters{StockpileID: &sp.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	return &alerts[0]
}

func TestAcknowledgeAlert(t *testing.T) {
	env := newTestEnv(t)
	alert := raiseLowStockAlert(t, env)

	acked, err := env.alerts.AcknowledgeAlert(alert.ID, "op-7")
	require.NoError(t, err)
	require.True(t, acked.IsAcknowledged)
	require.Equal(t, "op-7", *acked.AcknowledgedBy)
	require.NotNil(t, acked.AcknowledgedAt)

	// Acknowledging does not resolve.
	require.True(t, acked.IsActive)
	require.False(t, acked.IsResolved)

	// Repeat acknowledgement keeps the original attribution.
	again, err := env.alerts.AcknowledgeAlert(alert.ID, "op-8")
	require.NoError(t, err)
	require.Equal(t, "op-7", *again.AcknowledgedBy)
}

func TestAcknowledgeRequiresActiveAlert(t *testing.T) {
	env := newTestEnv(t)
	alert := raiseLowStockAlert(t, env)

	_, err := env.alerts.ResolveAlert(alert.ID, "op-7", ResolveAlertRequest{})
	require.NoError(t, err)

	_, err = env.alerts.AcknowledgeAlert(alert.ID, "op-8")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAcknowledgeRequiresOperator(t *testing.T) {
	env := newTestEnv(t)
	alert := raiseLowStockAlert(t, env)

	_, err := env.alerts.AcknowledgeAlert(alert.ID, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestResolveAlert(t *testing.T) {
	env := newTestEnv(t)
	alert := raiseLowStockAlert(t, env)

	notes := "replenishment order placed"
	resolved, err := env.alerts.ResolveAlert(alert.ID, "op-7", ResolveAlertRequest{Notes: &notes})
	require.NoError(t, err)
	require.True(t, resolved.IsResolved)
	require.False(t, resolved.IsActive)
	require.Equal(t, "op-7", *resolved.ResolvedBy)
	require.Equal(t, "replenishment order placed", *resolved.ResolutionNotes)

	// Repeat resolution is a no-op.
	again, err := env.alerts.ResolveAlert(alert.ID, "op-8", ResolveAlertRequest{})
	require.NoError(t, err)
	require.Equal(t, "op-7", *again.ResolvedBy)

	active, err := env.alerts.GetAlerts(models.AlertFilters{StockpileID: &alert.StockpileID, ActiveOnly: true})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestAlertNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.alerts.AcknowledgeAlert("alert_missing", "op-7")
	require.ErrorIs(t, err, ErrAlertNotFound)

	_, err = env.alerts.ResolveAlert("alert_missing", "op-7", ResolveAlertRequest{})
	require.ErrorIs(t, err, ErrAlertNotFound)

	_, err = env.alerts.GetAlertByID("alert_missing")
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestGetAlertsFilters(t *testing.T) {
	env := newTestEnv(t)
	alert := raiseLowStockAlert(t, env)

	lowStock := models.AlertTypeLowStock
	byType, err := env.alerts.GetAlerts(models.AlertFilters{Type: &lowStock})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	require.Equal(t, alert.ID, byType[0].ID)

	overstock := models.AlertTypeOverstock
	none, err := env.alerts.GetAlerts(models.AlertFilters{Type: &overstock})
	require.NoError(t, err)
	require.Empty(t, none)
}
