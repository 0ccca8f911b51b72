package repositories

import "weighbridge_backend/internal/models"

// Store is the transactional repository contract the weighing core runs
// against. Implementations must guarantee that all writes performed inside
// WithinTx become visible atomically, or not at all.
type Store interface {
	Tickets() TicketRepository
	Stockpiles() StockpileRepository
	StockMovements() StockMovementRepository
	Alerts() AlertRepository
	Orders() OrderRepository

	// WithinTx runs fn against a transaction-scoped view of the store.
	// A non-nil error from fn rolls every staged write back.
	WithinTx(fn func(tx Store) error) error
}

// TicketRepository persists weighing tickets.
type TicketRepository interface {
	CreateTicket(ticket *models.Ticket) error
	GetTicketByID(id string) (*models.Ticket, error)
	// UpdateTicket applies the ticket state if the stored version matches
	// expectedVersion, then increments the version. Returns
	// ErrVersionConflict otherwise.
	UpdateTicket(ticket *models.Ticket, expectedVersion int64) error
	GetTickets(filters models.TicketFilters) ([]models.Ticket, error)
	// NextTicketSequence returns the next value of the monotonically
	// increasing per-deployment ticket counter.
	NextTicketSequence() (int64, error)
}

// StockpileRepository persists stockpile projections.
type StockpileRepository interface {
	CreateStockpile(stockpile *models.Stockpile) error
	GetStockpileByID(id string) (*models.Stockpile, error)
	UpdateStockpile(stockpile *models.Stockpile, expectedVersion int64) error
	GetStockpiles(filters models.StockpileFilters) ([]models.Stockpile, error)
	// FindBySiteAndProduct resolves the active stockpile a finalized ticket
	// settles against.
	FindBySiteAndProduct(siteID, productID string) (*models.Stockpile, error)
}

// StockMovementRepository persists the append-only ledger. Movements are
// never updated or deleted.
type StockMovementRepository interface {
	// CreateMovement appends a ledger entry. Returns ErrDuplicateKey when a
	// movement with the same ticket provenance already exists.
	CreateMovement(movement *models.StockMovement) error
	GetMovements(filters models.MovementFilters) ([]models.StockMovement, error)
	// MarkMovementSynced flips sync bookkeeping only; the entry itself is
	// immutable.
	MarkMovementSynced(id string) error
}

// AlertRepository persists stock alerts.
type AlertRepository interface {
	CreateAlert(alert *models.StockAlert) error
	GetAlertByID(id string) (*models.StockAlert, error)
	UpdateAlert(alert *models.StockAlert) error
	GetAlerts(filters models.AlertFilters) ([]models.StockAlert, error)
	// FindActiveAlert returns the active alert of the given type for a
	// stockpile, or ErrNotFound.
	FindActiveAlert(stockpileID string, alertType models.AlertType) (*models.StockAlert, error)
}

// OrderRepository persists orders pushed in by the external order-management
// system. The weighing core treats them as read-only input.
type OrderRepository interface {
	CreateOrder(order *models.Order) error
	GetOrderByID(id string) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, error)
}
