package memstore

import (
	"weighbridge_backend/internal/models"
)

// Each repository carries either the owning Store (auto-commit calls, which
// take the store mutex per operation) or the transaction tables (mutex
// already held by WithinTx).

type ticketRepo struct {
	s  *Store
	tx *tables
}

func (r ticketRepo) run(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.t)
}

func (r ticketRepo) CreateTicket(ticket *models.Ticket) error {
	return r.run(func(t *tables) error { return t.createTicket(ticket) })
}

func (r ticketRepo) GetTicketByID(id string) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := r.run(func(t *tables) error {
		var err error
		ticket, err = t.getTicketByID(id)
		return err
	})
	return ticket, err
}

func (r ticketRepo) UpdateTicket(ticket *models.Ticket, expectedVersion int64) error {
	return r.run(func(t *tables) error { return t.updateTicket(ticket, expectedVersion) })
}

func (r ticketRepo) GetTickets(filters models.TicketFilters) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.run(func(t *tables) error {
		var err error
		tickets, err = t.getTickets(filters)
		return err
	})
	return tickets, err
}

func (r ticketRepo) NextTicketSequence() (int64, error) {
	var seq int64
	err := r.run(func(t *tables) error {
		var err error
		seq, err = t.nextTicketSequence()
		return err
	})
	return seq, err
}

type stockpileRepo struct {
	s  *Store
	tx *tables
}

func (r stockpileRepo) run(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.t)
}

func (r stockpileRepo) CreateStockpile(s *models.Stockpile) error {
	return r.run(func(t *tables) error { return t.createStockpile(s) })
}

func (r stockpileRepo) GetStockpileByID(id string) (*models.Stockpile, error) {
	var s *models.Stockpile
	err := r.run(func(t *tables) error {
		var err error
		s, err = t.getStockpileByID(id)
		return err
	})
	return s, err
}

func (r stockpileRepo) UpdateStockpile(s *models.Stockpile, expectedVersion int64) error {
	return r.run(func(t *tables) error { return t.updateStockpile(s, expectedVersion) })
}

func (r stockpileRepo) GetStockpiles(filters models.StockpileFilters) ([]models.Stockpile, error) {
	var stockpiles []models.Stockpile
	err := r.run(func(t *tables) error {
		var err error
		stockpiles, err = t.getStockpiles(filters)
		return err
	})
	return stockpiles, err
}

func (r stockpileRepo) FindBySiteAndProduct(siteID, productID string) (*models.Stockpile, error) {
	var s *models.Stockpile
	err := r.run(func(t *tables) error {
		var err error
		s, err = t.findBySiteAndProduct(siteID, productID)
		return err
	})
	return s, err
}

type movementRepo struct {
	s  *Store
	tx *tables
}

func (r movementRepo) run(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.t)
}

func (r movementRepo) CreateMovement(m *models.StockMovement) error {
	return r.run(func(t *tables) error { return t.createMovement(m) })
}

func (r movementRepo) GetMovements(filters models.MovementFilters) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.run(func(t *tables) error {
		var err error
		movements, err = t.getMovements(filters)
		return err
	})
	return movements, err
}

func (r movementRepo) MarkMovementSynced(id string) error {
	return r.run(func(t *tables) error { return t.markMovementSynced(id) })
}

type alertRepo struct {
	s  *Store
	tx *tables
}

func (r alertRepo) run(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.t)
}

func (r alertRepo) CreateAlert(a *models.StockAlert) error {
	return r.run(func(t *tables) error { return t.createAlert(a) })
}

func (r alertRepo) GetAlertByID(id string) (*models.StockAlert, error) {
	var a *models.StockAlert
	err := r.run(func(t *tables) error {
		var err error
		a, err = t.getAlertByID(id)
		return err
	})
	return a, err
}

func (r alertRepo) UpdateAlert(a *models.StockAlert) error {
	return r.run(func(t *tables) error { return t.updateAlert(a) })
}

func (r alertRepo) GetAlerts(filters models.AlertFilters) ([]models.StockAlert, error) {
	var alerts []models.StockAlert
	err := r.run(func(t *tables) error {
		var err error
		alerts, err = t.getAlerts(filters)
		return err
	})
	return alerts, err
}

func (r alertRepo) FindActiveAlert(stockpileID string, alertType models.AlertType) (*models.StockAlert, error) {
	var a *models.StockAlert
	err := r.run(func(t *tables) error {
		var err error
		a, err = t.findActiveAlert(stockpileID, alertType)
		return err
	})
	return a, err
}

type orderRepo struct {
	s  *Store
	tx *tables
}

func (r orderRepo) run(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.t)
}

func (r orderRepo) CreateOrder(o *models.Order) error {
	return r.run(func(t *tables) error { return t.createOrder(o) })
}

func (r orderRepo) GetOrderByID(id string) (*models.Order, error) {
	var o *models.Order
	err := r.run(func(t *tables) error {
		var err error
		o, err = t.getOrderByID(id)
		return err
	})
	return o, err
}

func (r orderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, error) {
	var orders []models.Order
	err := r.run(func(t *tables) error {
		var err error
		orders, err = t.getOrders(filters)
		return err
	})
	return orders, err
}
