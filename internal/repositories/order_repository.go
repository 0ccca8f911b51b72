package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"weighbridge_backend/internal/models"
)

type orderRepository struct {
	ex SQLExecutor
}

const orderColumns = `
	id, order_number, site_id, type, status, client_id, haulier_id, product_id,
	ordered_quantity_tonnes, price_per_tonne, created_at, updated_at`

func (r *orderRepository) CreateOrder(o *models.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.ex.Exec(query,
		o.ID, o.OrderNumber, o.SiteID, o.Type, o.Status, o.ClientID, o.HaulierID, o.ProductID,
		o.OrderedQuantityTonnes, o.PricePerTonne, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order %s", ErrDuplicateKey, o.ID)
		}
		return fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *orderRepository) GetOrderByID(id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.ex.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting order %s: %v", ErrDatabaseError, id, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + ` FROM orders`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.SiteID != nil {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", argCount))
		args = append(args, *filters.SiteID)
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.ex.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *order)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating orders: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

func scanOrder(sc scanner) (*models.Order, error) {
	var o models.Order
	err := sc.Scan(
		&o.ID, &o.OrderNumber, &o.SiteID, &o.Type, &o.Status, &o.ClientID, &o.HaulierID, &o.ProductID,
		&o.OrderedQuantityTonnes, &o.PricePerTonne, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
