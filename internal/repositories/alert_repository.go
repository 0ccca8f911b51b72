package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"weighbridge_backend/internal/models"

	"github.com/shopspring/decimal"
)

type alertRepository struct {
	ex SQLExecutor
}

const alertColumns = `
	id, stockpile_id, site_id, product_id, type, severity, title, message,
	threshold_value, current_value,
	is_active, is_acknowledged, acknowledged_by, acknowledged_at,
	is_resolved, resolved_by, resolved_at, resolution_notes,
	created_at, updated_at`

func (r *alertRepository) CreateAlert(a *models.StockAlert) error {
	query := `INSERT INTO stock_alerts (` + alertColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
	                  $9, $10,
	                  $11, $12, $13, $14,
	                  $15, $16, $17, $18,
	                  $19, $20)`

	_, err := r.ex.Exec(query,
		a.ID, a.StockpileID, a.SiteID, a.ProductID, a.Type, a.Severity, a.Title, a.Message,
		decimalPtrToNull(a.ThresholdValue), a.CurrentValue,
		a.IsActive, a.IsAcknowledged, a.AcknowledgedBy, a.AcknowledgedAt,
		a.IsResolved, a.ResolvedBy, a.ResolvedAt, a.ResolutionNotes,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: creating alert: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *alertRepository) GetAlertByID(id string) (*models.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts WHERE id = $1`
	alert, err := scanAlert(r.ex.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting alert %s: %v", ErrDatabaseError, id, err)
	}
	return alert, nil
}

func (r *alertRepository) UpdateAlert(a *models.StockAlert) error {
	query := `UPDATE stock_alerts SET
	    severity = $1, title = $2, message = $3, current_value = $4,
	    is_active = $5, is_acknowledged = $6, acknowledged_by = $7, acknowledged_at = $8,
	    is_resolved = $9, resolved_by = $10, resolved_at = $11, resolution_notes = $12,
	    updated_at = $13
	  WHERE id = $14`

	res, err := r.ex.Exec(query,
		a.Severity, a.Title, a.Message, a.CurrentValue,
		a.IsActive, a.IsAcknowledged, a.AcknowledgedBy, a.AcknowledgedAt,
		a.IsResolved, a.ResolvedBy, a.ResolvedAt, a.ResolutionNotes,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating alert %s: %v", ErrDatabaseError, a.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating alert %s: %v", ErrDatabaseError, a.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *alertRepository) GetAlerts(filters models.AlertFilters) ([]models.StockAlert, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + alertColumns + ` FROM stock_alerts`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.SiteID != nil {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", argCount))
		args = append(args, *filters.SiteID)
		argCount++
	}
	if filters.StockpileID != nil {
		conditions = append(conditions, fmt.Sprintf("stockpile_id = $%d", argCount))
		args = append(args, *filters.StockpileID)
		argCount++
	}
	if filters.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.ex.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting alerts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	alerts := []models.StockAlert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning alert: %v", ErrDatabaseError, err)
		}
		alerts = append(alerts, *alert)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating alerts: %v", ErrDatabaseError, err)
	}
	return alerts, nil
}

func (r *alertRepository) FindActiveAlert(stockpileID string, alertType models.AlertType) (*models.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts
	          WHERE stockpile_id = $1 AND type = $2 AND is_active = TRUE
	          ORDER BY created_at DESC LIMIT 1`
	alert, err := scanAlert(r.ex.QueryRow(query, stockpileID, alertType))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding active alert for stockpile %s: %v", ErrDatabaseError, stockpileID, err)
	}
	return alert, nil
}

func scanAlert(sc scanner) (*models.StockAlert, error) {
	var a models.StockAlert
	var threshold decimal.NullDecimal
	err := sc.Scan(
		&a.ID, &a.StockpileID, &a.SiteID, &a.ProductID, &a.Type, &a.Severity, &a.Title, &a.Message,
		&threshold, &a.CurrentValue,
		&a.IsActive, &a.IsAcknowledged, &a.AcknowledgedBy, &a.AcknowledgedAt,
		&a.IsResolved, &a.ResolvedBy, &a.ResolvedAt, &a.ResolutionNotes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ThresholdValue = nullToDecimalPtr(threshold)
	return &a, nil
}
