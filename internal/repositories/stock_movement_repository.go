package repositories

import (
	"fmt"
	"strings"

	"weighbridge_backend/internal/models"
)

type stockMovementRepository struct {
	ex SQLExecutor
}

const movementColumns = `
	id, stockpile_id, site_id, product_id, type, direction,
	quantity_tonnes, signed_quantity_tonnes, balance_before_tonnes, balance_after_tonnes,
	ticket_id, order_id, adjustment_reason, adjustment_notes, transfer_stockpile_id,
	created_by, created_at, sync_status`

func (r *stockMovementRepository) CreateMovement(m *models.StockMovement) error {
	if err := m.Provenance.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	query := `INSERT INTO stock_movements (` + movementColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6,
	                  $7, $8, $9, $10,
	                  $11, $12, $13, $14, $15,
	                  $16, $17, $18)`

	_, err := r.ex.Exec(query,
		m.ID, m.StockpileID, m.SiteID, m.ProductID, m.Type, m.Direction,
		m.QuantityTonnes, m.SignedQuantityTonnes, m.BalanceBeforeTonnes, m.BalanceAfterTonnes,
		m.Provenance.TicketID, m.Provenance.OrderID, m.Provenance.AdjustmentReason,
		m.Provenance.AdjustmentNotes, m.Provenance.TransferStockpileID,
		m.CreatedBy, m.CreatedAt, m.SyncStatus,
	)
	if err != nil {
		// The unique index on ticket_id guards finalize idempotence: one
		// settled movement per ticket, ever.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movement for ticket already recorded", ErrDuplicateKey)
		}
		return fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *stockMovementRepository) GetMovements(filters models.MovementFilters) ([]models.StockMovement, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + movementColumns + ` FROM stock_movements`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StockpileID != nil {
		conditions = append(conditions, fmt.Sprintf("stockpile_id = $%d", argCount))
		args = append(args, *filters.StockpileID)
		argCount++
	}
	if filters.SiteID != nil {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", argCount))
		args = append(args, *filters.SiteID)
		argCount++
	}
	if filters.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.TicketID != nil {
		conditions = append(conditions, fmt.Sprintf("ticket_id = $%d", argCount))
		args = append(args, *filters.TicketID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := r.ex.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(
			&m.ID, &m.StockpileID, &m.SiteID, &m.ProductID, &m.Type, &m.Direction,
			&m.QuantityTonnes, &m.SignedQuantityTonnes, &m.BalanceBeforeTonnes, &m.BalanceAfterTonnes,
			&m.Provenance.TicketID, &m.Provenance.OrderID, &m.Provenance.AdjustmentReason,
			&m.Provenance.AdjustmentNotes, &m.Provenance.TransferStockpileID,
			&m.CreatedBy, &m.CreatedAt, &m.SyncStatus,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		movements = append(movements, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, nil
}

func (r *stockMovementRepository) MarkMovementSynced(id string) error {
	res, err := r.ex.Exec(`UPDATE stock_movements SET sync_status = 'synced' WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: marking movement %s synced: %v", ErrDatabaseError, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: marking movement %s synced: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
