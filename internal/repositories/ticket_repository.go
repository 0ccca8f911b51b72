package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"weighbridge_backend/internal/models"

	"github.com/shopspring/decimal"
)

type ticketRepository struct {
	ex SQLExecutor
}

const ticketColumns = `
	id, ticket_number, order_id, site_id, type, status,
	vehicle_id, driver_id, product_id,
	tare_weight_kg, tare_captured_at, tare_weighbridge_id, tare_operator_id, tare_image_url,
	gross_weight_kg, gross_captured_at, gross_weighbridge_id, gross_operator_id, gross_image_url,
	net_weight_kg, net_weight_tonnes, price_per_tonne, total_value,
	moisture_percentage, quality_grade, quality_notes, seal_number, notes,
	created_at, updated_at, finalized_at, voided_at, voided_by, void_reason,
	sync_status, version`

func (r *ticketRepository) CreateTicket(t *models.Ticket) error {
	query := `INSERT INTO tickets (` + ticketColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
	                  $10, $11, $12, $13, $14,
	                  $15, $16, $17, $18, $19,
	                  $20, $21, $22, $23,
	                  $24, $25, $26, $27, $28,
	                  $29, $30, $31, $32, $33, $34, $35, $36)`

	_, err := r.ex.Exec(query,
		t.ID, t.TicketNumber, t.OrderID, t.SiteID, t.Type, t.Status,
		t.VehicleID, t.DriverID, t.ProductID,
		t.TareWeightKg, t.TareCapturedAt, t.TareWeighbridgeID, t.TareOperatorID, t.TareImageURL,
		t.GrossWeightKg, t.GrossCapturedAt, t.GrossWeighbridgeID, t.GrossOperatorID, t.GrossImageURL,
		t.NetWeightKg, decimalPtrToNull(t.NetWeightTonnes), t.PricePerTonne, decimalPtrToNull(t.TotalValue),
		t.MoisturePercentage, t.QualityGrade, t.QualityNotes, t.SealNumber, t.Notes,
		t.CreatedAt, t.UpdatedAt, t.FinalizedAt, t.VoidedAt, t.VoidedBy, t.VoidReason,
		t.SyncStatus, t.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticket %s", ErrDuplicateKey, t.ID)
		}
		return fmt.Errorf("%w: creating ticket: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *ticketRepository) GetTicketByID(id string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	ticket, err := scanTicket(r.ex.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting ticket %s: %v", ErrDatabaseError, id, err)
	}
	return ticket, nil
}

func (r *ticketRepository) UpdateTicket(t *models.Ticket, expectedVersion int64) error {
	query := `UPDATE tickets SET
	    order_id = $1, status = $2,
	    tare_weight_kg = $3, tare_captured_at = $4, tare_weighbridge_id = $5, tare_operator_id = $6, tare_image_url = $7,
	    gross_weight_kg = $8, gross_captured_at = $9, gross_weighbridge_id = $10, gross_operator_id = $11, gross_image_url = $12,
	    net_weight_kg = $13, net_weight_tonnes = $14, total_value = $15,
	    moisture_percentage = $16, quality_grade = $17, quality_notes = $18, seal_number = $19, notes = $20,
	    updated_at = $21, finalized_at = $22, voided_at = $23, voided_by = $24, void_reason = $25,
	    sync_status = $26, version = version + 1
	  WHERE id = $27 AND version = $28`

	res, err := r.ex.Exec(query,
		t.OrderID, t.Status,
		t.TareWeightKg, t.TareCapturedAt, t.TareWeighbridgeID, t.TareOperatorID, t.TareImageURL,
		t.GrossWeightKg, t.GrossCapturedAt, t.GrossWeighbridgeID, t.GrossOperatorID, t.GrossImageURL,
		t.NetWeightKg, decimalPtrToNull(t.NetWeightTonnes), decimalPtrToNull(t.TotalValue),
		t.MoisturePercentage, t.QualityGrade, t.QualityNotes, t.SealNumber, t.Notes,
		t.UpdatedAt, t.FinalizedAt, t.VoidedAt, t.VoidedBy, t.VoidReason,
		t.SyncStatus,
		t.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("%w: updating ticket %s: %v", ErrDatabaseError, t.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating ticket %s: %v", ErrDatabaseError, t.ID, err)
	}
	if affected == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if scanErr := r.ex.QueryRow(`SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)`, t.ID).Scan(&exists); scanErr == nil && !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	t.Version = expectedVersion + 1
	return nil
}

func (r *ticketRepository) GetTickets(filters models.TicketFilters) ([]models.Ticket, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + ticketColumns + ` FROM tickets`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.SiteID != nil {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", argCount))
		args = append(args, *filters.SiteID)
		argCount++
	}
	if filters.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argCount))
		args = append(args, *filters.OrderID)
		argCount++
	}
	if filters.VehicleID != nil {
		conditions = append(conditions, fmt.Sprintf("vehicle_id = $%d", argCount))
		args = append(args, *filters.VehicleID)
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
	if filters.ActiveOnly {
		conditions = append(conditions, "status NOT IN ('finalized', 'voided')")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.ex.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting tickets: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning ticket: %v", ErrDatabaseError, err)
		}
		tickets = append(tickets, *ticket)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating tickets: %v", ErrDatabaseError, err)
	}
	return tickets, nil
}

func (r *ticketRepository) NextTicketSequence() (int64, error) {
	var seq int64
	if err := r.ex.QueryRow(`SELECT nextval('ticket_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%w: fetching ticket sequence: %v", ErrDatabaseError, err)
	}
	return seq, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(sc scanner) (*models.Ticket, error) {
	var t models.Ticket
	var netTonnes, totalValue decimal.NullDecimal

	err := sc.Scan(
		&t.ID, &t.TicketNumber, &t.OrderID, &t.SiteID, &t.Type, &t.Status,
		&t.VehicleID, &t.DriverID, &t.ProductID,
		&t.TareWeightKg, &t.TareCapturedAt, &t.TareWeighbridgeID, &t.TareOperatorID, &t.TareImageURL,
		&t.GrossWeightKg, &t.GrossCapturedAt, &t.GrossWeighbridgeID, &t.GrossOperatorID, &t.GrossImageURL,
		&t.NetWeightKg, &netTonnes, &t.PricePerTonne, &totalValue,
		&t.MoisturePercentage, &t.QualityGrade, &t.QualityNotes, &t.SealNumber, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt, &t.FinalizedAt, &t.VoidedAt, &t.VoidedBy, &t.VoidReason,
		&t.SyncStatus, &t.Version,
	)
	if err != nil {
		return nil, err
	}
	t.NetWeightTonnes = nullToDecimalPtr(netTonnes)
	t.TotalValue = nullToDecimalPtr(totalValue)
	return &t, nil
}

func decimalPtrToNull(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *p, Valid: true}
}

func nullToDecimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}
