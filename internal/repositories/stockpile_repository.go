package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"weighbridge_backend/internal/models"
)

type stockpileRepository struct {
	ex SQLExecutor
}

const stockpileColumns = `
	id, site_id, product_id, name, code, location, status,
	capacity_tonnes, current_quantity_tonnes, reserved_quantity_tonnes, available_quantity_tonnes,
	low_stock_threshold_tonnes, high_stock_threshold_tonnes, is_low_stock, is_overstock,
	value_per_tonne, notes, created_at, updated_at, last_movement_at, version`

func (r *stockpileRepository) CreateStockpile(s *models.Stockpile) error {
	query := `INSERT INTO stockpiles (` + stockpileColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7,
	                  $8, $9, $10, $11,
	                  $12, $13, $14, $15,
	                  $16, $17, $18, $19, $20, $21)`

	_, err := r.ex.Exec(query,
		s.ID, s.SiteID, s.ProductID, s.Name, s.Code, s.Location, s.Status,
		s.CapacityTonnes, s.CurrentQuantityTonnes, s.ReservedQuantityTonnes, s.AvailableQuantityTonnes,
		s.LowStockThresholdTonnes, s.HighStockThresholdTonnes, s.IsLowStock, s.IsOverstock,
		s.ValuePerTonne, s.Notes, s.CreatedAt, s.UpdatedAt, s.LastMovementAt, s.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stockpile %s", ErrDuplicateKey, s.ID)
		}
		return fmt.Errorf("%w: creating stockpile: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *stockpileRepository) GetStockpileByID(id string) (*models.Stockpile, error) {
	query := `SELECT ` + stockpileColumns + ` FROM stockpiles WHERE id = $1`
	stockpile, err := scanStockpile(r.ex.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting stockpile %s: %v", ErrDatabaseError, id, err)
	}
	return stockpile, nil
}

func (r *stockpileRepository) UpdateStockpile(s *models.Stockpile, expectedVersion int64) error {
	query := `UPDATE stockpiles SET
	    name = $1, location = $2, status = $3,
	    capacity_tonnes = $4, current_quantity_tonnes = $5, reserved_quantity_tonnes = $6,
	    available_quantity_tonnes = $7,
	    low_stock_threshold_tonnes = $8, high_stock_threshold_tonnes = $9,
	    is_low_stock = $10, is_overstock = $11,
	    value_per_tonne = $12, notes = $13, updated_at = $14, last_movement_at = $15,
	    version = version + 1
	  WHERE id = $16 AND version = $17`

	res, err := r.ex.Exec(query,
		s.Name, s.Location, s.Status,
		s.CapacityTonnes, s.CurrentQuantityTonnes, s.ReservedQuantityTonnes,
		s.AvailableQuantityTonnes,
		s.LowStockThresholdTonnes, s.HighStockThresholdTonnes,
		s.IsLowStock, s.IsOverstock,
		s.ValuePerTonne, s.Notes, s.UpdatedAt, s.LastMovementAt,
		s.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("%w: updating stockpile %s: %v", ErrDatabaseError, s.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating stockpile %s: %v", ErrDatabaseError, s.ID, err)
	}
	if affected == 0 {
		var exists bool
		if scanErr := r.ex.QueryRow(`SELECT EXISTS(SELECT 1 FROM stockpiles WHERE id = $1)`, s.ID).Scan(&exists); scanErr == nil && !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	return nil
}

func (r *stockpileRepository) GetStockpiles(filters models.StockpileFilters) ([]models.Stockpile, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + stockpileColumns + ` FROM stockpiles`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.SiteID != nil {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", argCount))
		args = append(args, *filters.SiteID)
		argCount++
	}
	if filters.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argCount))
		args = append(args, *filters.ProductID)
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.LowStockOnly {
		conditions = append(conditions, "is_low_stock = TRUE")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name ASC")

	rows, err := r.ex.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting stockpiles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	stockpiles := []models.Stockpile{}
	for rows.Next() {
		stockpile, err := scanStockpile(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning stockpile: %v", ErrDatabaseError, err)
		}
		stockpiles = append(stockpiles, *stockpile)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating stockpiles: %v", ErrDatabaseError, err)
	}
	return stockpiles, nil
}

func (r *stockpileRepository) FindBySiteAndProduct(siteID, productID string) (*models.Stockpile, error) {
	query := `SELECT ` + stockpileColumns + ` FROM stockpiles
	          WHERE site_id = $1 AND product_id = $2 AND status = 'active'
	          ORDER BY created_at ASC LIMIT 1`
	stockpile, err := scanStockpile(r.ex.QueryRow(query, siteID, productID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding stockpile for site %s product %s: %v", ErrDatabaseError, siteID, productID, err)
	}
	return stockpile, nil
}

func scanStockpile(sc scanner) (*models.Stockpile, error) {
	var s models.Stockpile
	err := sc.Scan(
		&s.ID, &s.SiteID, &s.ProductID, &s.Name, &s.Code, &s.Location, &s.Status,
		&s.CapacityTonnes, &s.CurrentQuantityTonnes, &s.ReservedQuantityTonnes, &s.AvailableQuantityTonnes,
		&s.LowStockThresholdTonnes, &s.HighStockThresholdTonnes, &s.IsLowStock, &s.IsOverstock,
		&s.ValuePerTonne, &s.Notes, &s.CreatedAt, &s.UpdatedAt, &s.LastMovementAt, &s.Version,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
