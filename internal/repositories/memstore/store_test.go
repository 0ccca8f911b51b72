package memstore

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testTicket(id string) *models.Ticket {
	now := time.Now().UTC()
	return &models.Ticket{
		ID:            id,
		TicketNumber:  "TKT-2026-" + id,
		SiteID:        "site-1",
		Type:          models.TicketTypeOutbound,
		Status:        models.TicketStatusOpen,
		VehicleID:     "veh-1",
		DriverID:      "drv-1",
		ProductID:     "prod-iron-ore",
		PricePerTonne: decimal.RequireFromString("12.50"),
		SyncStatus:    models.SyncStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
}

func testStockpile(id, siteID, productID string) *models.Stockpile {
	now := time.Now().UTC()
	return &models.Stockpile{
		ID:                    id,
		SiteID:                siteID,
		ProductID:             productID,
		Name:                  "Stockpile " + id,
		Code:                  "SP-" + id,
		Status:                models.StockpileStatusActive,
		CapacityTonnes:        decimal.RequireFromString("1000"),
		CurrentQuantityTonnes: decimal.RequireFromString("100"),
		CreatedAt:             now,
		UpdatedAt:             now,
		Version:               1,
	}
}

func testMovement(id, stockpileID string, provenance models.MovementProvenance) *models.StockMovement {
	qty := decimal.RequireFromString("10")
	return &models.StockMovement{
		ID:                   id,
		StockpileID:          stockpileID,
		SiteID:               "site-1",
		ProductID:            "prod-iron-ore",
		Type:                 provenance.Kind(models.TicketTypeInbound),
		Direction:            models.MovementDirectionIn,
		QuantityTonnes:       qty,
		SignedQuantityTonnes: qty,
		BalanceBeforeTonnes:  decimal.RequireFromString("100"),
		BalanceAfterTonnes:   decimal.RequireFromString("110"),
		Provenance:           provenance,
		SyncStatus:           models.SyncStatusPending,
		CreatedAt:            time.Now().UTC(),
	}
}

func TestWithinTxRollsBackStagedWrites(t *testing.T) {
	store := New()
	require.NoError(t, store.Tickets().CreateTicket(testTicket("t1")))

	boom := errors.New("boom")
	err := store.WithinTx(func(tx repositories.Store) error {
		ticket, err := tx.Tickets().GetTicketByID("t1")
		require.NoError(t, err)
		ticket.Status = models.TicketStatusVoided
		require.NoError(t, tx.Tickets().UpdateTicket(ticket, ticket.Version))
		require.NoError(t, tx.Tickets().CreateTicket(testTicket("t2")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	ticket, err := store.Tickets().GetTicketByID("t1")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusOpen, ticket.Status)
	require.Equal(t, int64(1), ticket.Version)

	_, err = store.Tickets().GetTicketByID("t2")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestWithinTxCommitsAtomically(t *testing.T) {
	store := New()
	require.NoError(t, store.Stockpiles().CreateStockpile(testStockpile("sp1", "site-1", "prod-iron-ore")))

	err := store.WithinTx(func(tx repositories.Store) error {
		sp, err := tx.Stockpiles().GetStockpileByID("sp1")
		if err != nil {
			return err
		}
		sp.CurrentQuantityTonnes = decimal.RequireFromString("110")
		if err := tx.Stockpiles().UpdateStockpile(sp, sp.Version); err != nil {
			return err
		}
		reason := models.AdjustmentReasonPhysicalCount
		return tx.StockMovements().CreateMovement(
			testMovement("m1", "sp1", models.MovementProvenance{AdjustmentReason: &reason}))
	})
	require.NoError(t, err)

	sp, err := store.Stockpiles().GetStockpileByID("sp1")
	require.NoError(t, err)
	require.True(t, sp.CurrentQuantityTonnes.Equal(decimal.RequireFromString("110")))
	require.Equal(t, int64(2), sp.Version)

	movements, err := store.StockMovements().GetMovements(models.MovementFilters{})
	require.NoError(t, err)
	require.Len(t, movements, 1)
}

func TestNestedWithinTxJoins(t *testing.T) {
	store := New()

	err := store.WithinTx(func(tx repositories.Store) error {
		if err := tx.Tickets().CreateTicket(testTicket("t1")); err != nil {
			return err
		}
		return tx.WithinTx(func(inner repositories.Store) error {
			// The nested scope must see the outer scope's staged write.
			_, err := inner.Tickets().GetTicketByID("t1")
			return err
		})
	})
	require.NoError(t, err)

	_, err = store.Tickets().GetTicketByID("t1")
	require.NoError(t, err)
}

func TestUpdateTicketVersionConflict(t *testing.T) {
	store := New()
	require.NoError(t, store.Tickets().CreateTicket(testTicket("t1")))

	ticket, err := store.Tickets().GetTicketByID("t1")
	require.NoError(t, err)
	stale, err := store.Tickets().GetTicketByID("t1")
	require.NoError(t, err)

	ticket.Status = models.TicketStatusTareCaptured
	require.NoError(t, store.Tickets().UpdateTicket(ticket, 1))
	require.Equal(t, int64(2), ticket.Version)

	stale.Status = models.TicketStatusVoided
	err = store.Tickets().UpdateTicket(stale, 1)
	require.ErrorIs(t, err, repositories.ErrVersionConflict)

	current, err := store.Tickets().GetTicketByID("t1")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusTareCaptured, current.Status)
}

func TestCreateMovementEnforcesOnePerTicket(t *testing.T) {
	store := New()
	ticketID := "t1"

	first := testMovement("m1", "sp1", models.TicketProvenance(ticketID, nil))
	require.NoError(t, store.StockMovements().CreateMovement(first))

	second := testMovement("m2", "sp1", models.TicketProvenance(ticketID, nil))
	err := store.StockMovements().CreateMovement(second)
	require.ErrorIs(t, err, repositories.ErrDuplicateKey)
}

func TestCreateMovementRejectsInvalidProvenance(t *testing.T) {
	store := New()

	err := store.StockMovements().CreateMovement(testMovement("m1", "sp1", models.MovementProvenance{}))
	require.Error(t, err)

	movements, err := store.StockMovements().GetMovements(models.MovementFilters{})
	require.NoError(t, err)
	require.Empty(t, movements)
}

func TestReadsReturnIsolatedClones(t *testing.T) {
	store := New()
	require.NoError(t, store.Tickets().CreateTicket(testTicket("t1")))

	first, err := store.Tickets().GetTicketByID("t1")
	require.NoError(t, err)
	first.Status = models.TicketStatusVoided

	second, err := store.Tickets().GetTicketByID("t1")
	require.NoError(t, err)
	require.Equal(t, models.TicketStatusOpen, second.Status)
}

func TestNextTicketSequence(t *testing.T) {
	store := New()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Tickets().NextTicketSequence()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestFindBySiteAndProductPrefersOldestActive(t *testing.T) {
	store := New()

	older := testStockpile("sp1", "site-1", "prod-iron-ore")
	require.NoError(t, store.Stockpiles().CreateStockpile(older))
	newer := testStockpile("sp2", "site-1", "prod-iron-ore")
	require.NoError(t, store.Stockpiles().CreateStockpile(newer))
	inactive := testStockpile("sp0", "site-1", "prod-coal")
	inactive.Status = models.StockpileStatusInactive
	require.NoError(t, store.Stockpiles().CreateStockpile(inactive))

	found, err := store.Stockpiles().FindBySiteAndProduct("site-1", "prod-iron-ore")
	require.NoError(t, err)
	require.Equal(t, "sp1", found.ID)

	_, err = store.Stockpiles().FindBySiteAndProduct("site-1", "prod-coal")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFindActiveAlertReturnsNewest(t *testing.T) {
	store := New()
	now := time.Now().UTC()

	for i, active := range []bool{true, true, false} {
		alert := &models.StockAlert{
			ID:           fmt.Sprintf("a%d", i+1),
			StockpileID:  "sp1",
			SiteID:       "site-1",
			ProductID:    "prod-iron-ore",
			Type:         models.AlertTypeLowStock,
			Severity:     models.AlertSeverityWarning,
			Title:        "Low stock",
			Message:      "below threshold",
			CurrentValue: decimal.RequireFromString("50"),
			IsActive:     active,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, store.Alerts().CreateAlert(alert))
	}

	found, err := store.Alerts().FindActiveAlert("sp1", models.AlertTypeLowStock)
	require.NoError(t, err)
	require.Equal(t, "a2", found.ID)

	_, err = store.Alerts().FindActiveAlert("sp1", models.AlertTypeOverstock)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGetMovementsNewestFirst(t *testing.T) {
	store := New()
	reason := models.AdjustmentReasonPhysicalCount

	for _, id := range []string{"m1", "m2", "m3"} {
		m := testMovement(id, "sp1", models.MovementProvenance{AdjustmentReason: &reason})
		require.NoError(t, store.StockMovements().CreateMovement(m))
	}

	movements, err := store.StockMovements().GetMovements(models.MovementFilters{})
	require.NoError(t, err)
	require.Len(t, movements, 3)
	require.Equal(t, "m3", movements[0].ID)
	require.Equal(t, "m1", movements[2].ID)
}

func TestMarkMovementSyncedLeavesEntryImmutable(t *testing.T) {
	store := New()
	reason := models.AdjustmentReasonPhysicalCount
	m := testMovement("m1", "sp1", models.MovementProvenance{AdjustmentReason: &reason})
	require.NoError(t, store.StockMovements().CreateMovement(m))

	require.NoError(t, store.StockMovements().MarkMovementSynced("m1"))

	movements, err := store.StockMovements().GetMovements(models.MovementFilters{})
	require.NoError(t, err)
	require.Equal(t, models.SyncStatusSynced, movements[0].SyncStatus)
	require.True(t, movements[0].QuantityTonnes.Equal(m.QuantityTonnes))

	require.ErrorIs(t, store.StockMovements().MarkMovementSynced("m404"), repositories.ErrNotFound)
}
