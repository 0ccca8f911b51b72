// Package memstore is an in-memory implementation of the repository
// contract, used by offline edge deployments and the test suite. All
// mutation goes through the store mutex; WithinTx stages writes on copied
// tables and swaps them in only when the whole unit succeeds.
package memstore

import (
	"fmt"
	"sort"
	"sync"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/repositories"
)

// Store implements repositories.Store with map-backed tables.
type Store struct {
	mu sync.Mutex
	t  *tables
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{t: newTables()}
}

func (s *Store) Tickets() repositories.TicketRepository {
	return ticketRepo{s: s}
}

func (s *Store) Stockpiles() repositories.StockpileRepository {
	return stockpileRepo{s: s}
}

func (s *Store) StockMovements() repositories.StockMovementRepository {
	return movementRepo{s: s}
}

func (s *Store) Alerts() repositories.AlertRepository {
	return alertRepo{s: s}
}

func (s *Store) Orders() repositories.OrderRepository {
	return orderRepo{s: s}
}

// WithinTx holds the store mutex for the duration of fn, so a transaction
// observes and produces a consistent snapshot. fn runs against a copy of the
// tables; an error discards every staged write.
func (s *Store) WithinTx(fn func(tx repositories.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.t.copy()
	if err := fn(&txStore{t: staged}); err != nil {
		return err
	}
	s.t = staged
	return nil
}

// txStore is the transaction-scoped view. The surrounding WithinTx already
// holds the store mutex, so its repositories operate unlocked.
type txStore struct {
	t *tables
}

func (s *txStore) Tickets() repositories.TicketRepository        { return ticketRepo{tx: s.t} }
func (s *txStore) Stockpiles() repositories.StockpileRepository  { return stockpileRepo{tx: s.t} }
func (s *txStore) StockMovements() repositories.StockMovementRepository {
	return movementRepo{tx: s.t}
}
func (s *txStore) Alerts() repositories.AlertRepository { return alertRepo{tx: s.t} }
func (s *txStore) Orders() repositories.OrderRepository { return orderRepo{tx: s.t} }

// WithinTx nested inside a transaction joins the surrounding one.
func (s *txStore) WithinTx(fn func(tx repositories.Store) error) error {
	return fn(s)
}

// tables holds every entity map plus insertion bookkeeping for stable list
// ordering.
type tables struct {
	tickets           map[string]*models.Ticket
	stockpiles        map[string]*models.Stockpile
	movements         map[string]*models.StockMovement
	movementsByTicket map[string]string
	alerts            map[string]*models.StockAlert
	orders            map[string]*models.Order

	ticketSeq int64
	insertSeq int64
	ord       map[string]int64
}

func newTables() *tables {
	return &tables{
		tickets:           make(map[string]*models.Ticket),
		stockpiles:        make(map[string]*models.Stockpile),
		movements:         make(map[string]*models.StockMovement),
		movementsByTicket: make(map[string]string),
		alerts:            make(map[string]*models.StockAlert),
		orders:            make(map[string]*models.Order),
		ord:               make(map[string]int64),
	}
}

// copy clones the map headers only. Entries are treated as immutable: every
// write replaces the stored pointer with a fresh clone, so shared entries
// are never mutated in place.
func (t *tables) copy() *tables {
	c := &tables{
		tickets:           make(map[string]*models.Ticket, len(t.tickets)),
		stockpiles:        make(map[string]*models.Stockpile, len(t.stockpiles)),
		movements:         make(map[string]*models.StockMovement, len(t.movements)),
		movementsByTicket: make(map[string]string, len(t.movementsByTicket)),
		alerts:            make(map[string]*models.StockAlert, len(t.alerts)),
		orders:            make(map[string]*models.Order, len(t.orders)),
		ticketSeq:         t.ticketSeq,
		insertSeq:         t.insertSeq,
		ord:               make(map[string]int64, len(t.ord)),
	}
	for k, v := range t.tickets {
		c.tickets[k] = v
	}
	for k, v := range t.stockpiles {
		c.stockpiles[k] = v
	}
	for k, v := range t.movements {
		c.movements[k] = v
	}
	for k, v := range t.movementsByTicket {
		c.movementsByTicket[k] = v
	}
	for k, v := range t.alerts {
		c.alerts[k] = v
	}
	for k, v := range t.orders {
		c.orders[k] = v
	}
	for k, v := range t.ord {
		c.ord[k] = v
	}
	return c
}

func (t *tables) nextInsert(id string) {
	t.insertSeq++
	t.ord[id] = t.insertSeq
}

// --- tickets ---

func (t *tables) createTicket(ticket *models.Ticket) error {
	if _, exists := t.tickets[ticket.ID]; exists {
		return fmt.Errorf("%w: ticket %s", repositories.ErrDuplicateKey, ticket.ID)
	}
	t.tickets[ticket.ID] = ticket.Clone()
	t.nextInsert(ticket.ID)
	return nil
}

func (t *tables) getTicketByID(id string) (*models.Ticket, error) {
	ticket, ok := t.tickets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return ticket.Clone(), nil
}

func (t *tables) updateTicket(ticket *models.Ticket, expectedVersion int64) error {
	current, ok := t.tickets[ticket.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if current.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	updated := ticket.Clone()
	updated.Version = expectedVersion + 1
	t.tickets[ticket.ID] = updated
	ticket.Version = updated.Version
	return nil
}

func (t *tables) getTickets(filters models.TicketFilters) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	for _, ticket := range t.tickets {
		if filters.SiteID != nil && ticket.SiteID != *filters.SiteID {
			continue
		}
		if filters.OrderID != nil && (ticket.OrderID == nil || *ticket.OrderID != *filters.OrderID) {
			continue
		}
		if filters.VehicleID != nil && ticket.VehicleID != *filters.VehicleID {
			continue
		}
		if filters.Status != nil && ticket.Status != *filters.Status {
			continue
		}
		if filters.Type != nil && ticket.Type != *filters.Type {
			continue
		}
		if filters.ActiveOnly && models.IsTerminalTicketStatus(ticket.Status) {
			continue
		}
		tickets = append(tickets, *ticket.Clone())
	}
	t.sortNewestFirst(len(tickets), func(i int) string { return tickets[i].ID }, func(i, j int) {
		tickets[i], tickets[j] = tickets[j], tickets[i]
	})
	return tickets, nil
}

func (t *tables) nextTicketSequence() (int64, error) {
	t.ticketSeq++
	return t.ticketSeq, nil
}

// --- stockpiles ---

func (t *tables) createStockpile(s *models.Stockpile) error {
	if _, exists := t.stockpiles[s.ID]; exists {
		return fmt.Errorf("%w: stockpile %s", repositories.ErrDuplicateKey, s.ID)
	}
	t.stockpiles[s.ID] = s.Clone()
	t.nextInsert(s.ID)
	return nil
}

func (t *tables) getStockpileByID(id string) (*models.Stockpile, error) {
	s, ok := t.stockpiles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s.Clone(), nil
}

func (t *tables) updateStockpile(s *models.Stockpile, expectedVersion int64) error {
	current, ok := t.stockpiles[s.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if current.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	updated := s.Clone()
	updated.Version = expectedVersion + 1
	t.stockpiles[s.ID] = updated
	s.Version = updated.Version
	return nil
}

func (t *tables) getStockpiles(filters models.StockpileFilters) ([]models.Stockpile, error) {
	stockpiles := []models.Stockpile{}
	for _, s := range t.stockpiles {
		if filters.SiteID != nil && s.SiteID != *filters.SiteID {
			continue
		}
		if filters.ProductID != nil && s.ProductID != *filters.ProductID {
			continue
		}
		if filters.Status != nil && s.Status != *filters.Status {
			continue
		}
		if filters.LowStockOnly && !s.IsLowStock {
			continue
		}
		stockpiles = append(stockpiles, *s.Clone())
	}
	sort.Slice(stockpiles, func(i, j int) bool { return stockpiles[i].Name < stockpiles[j].Name })
	return stockpiles, nil
}

func (t *tables) findBySiteAndProduct(siteID, productID string) (*models.Stockpile, error) {
	var match *models.Stockpile
	for _, s := range t.stockpiles {
		if s.SiteID != siteID || s.ProductID != productID || s.Status != models.StockpileStatusActive {
			continue
		}
		if match == nil || t.ord[s.ID] < t.ord[match.ID] {
			match = s
		}
	}
	if match == nil {
		return nil, repositories.ErrNotFound
	}
	return match.Clone(), nil
}

// --- stock movements ---

func (t *tables) createMovement(m *models.StockMovement) error {
	if err := m.Provenance.Validate(); err != nil {
		return fmt.Errorf("%w: %v", repositories.ErrDatabaseError, err)
	}
	if _, exists := t.movements[m.ID]; exists {
		return fmt.Errorf("%w: movement %s", repositories.ErrDuplicateKey, m.ID)
	}
	if m.Provenance.TicketID != nil {
		if _, exists := t.movementsByTicket[*m.Provenance.TicketID]; exists {
			return fmt.Errorf("%w: movement for ticket already recorded", repositories.ErrDuplicateKey)
		}
		t.movementsByTicket[*m.Provenance.TicketID] = m.ID
	}
	t.movements[m.ID] = m.Clone()
	t.nextInsert(m.ID)
	return nil
}

func (t *tables) getMovements(filters models.MovementFilters) ([]models.StockMovement, error) {
	movements := []models.StockMovement{}
	for _, m := range t.movements {
		if filters.StockpileID != nil && m.StockpileID != *filters.StockpileID {
			continue
		}
		if filters.SiteID != nil && m.SiteID != *filters.SiteID {
			continue
		}
		if filters.Type != nil && m.Type != *filters.Type {
			continue
		}
		if filters.TicketID != nil && (m.Provenance.TicketID == nil || *m.Provenance.TicketID != *filters.TicketID) {
			continue
		}
		movements = append(movements, *m.Clone())
	}
	t.sortNewestFirst(len(movements), func(i int) string { return movements[i].ID }, func(i, j int) {
		movements[i], movements[j] = movements[j], movements[i]
	})
	return movements, nil
}

func (t *tables) markMovementSynced(id string) error {
	m, ok := t.movements[id]
	if !ok {
		return repositories.ErrNotFound
	}
	updated := m.Clone()
	updated.SyncStatus = models.SyncStatusSynced
	t.movements[id] = updated
	return nil
}

// --- alerts ---

func (t *tables) createAlert(a *models.StockAlert) error {
	if _, exists := t.alerts[a.ID]; exists {
		return fmt.Errorf("%w: alert %s", repositories.ErrDuplicateKey, a.ID)
	}
	t.alerts[a.ID] = a.Clone()
	t.nextInsert(a.ID)
	return nil
}

func (t *tables) getAlertByID(id string) (*models.StockAlert, error) {
	a, ok := t.alerts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return a.Clone(), nil
}

func (t *tables) updateAlert(a *models.StockAlert) error {
	if _, ok := t.alerts[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	t.alerts[a.ID] = a.Clone()
	return nil
}

func (t *tables) getAlerts(filters models.AlertFilters) ([]models.StockAlert, error) {
	alerts := []models.StockAlert{}
	for _, a := range t.alerts {
		if filters.SiteID != nil && a.SiteID != *filters.SiteID {
			continue
		}
		if filters.StockpileID != nil && a.StockpileID != *filters.StockpileID {
			continue
		}
		if filters.Type != nil && a.Type != *filters.Type {
			continue
		}
		if filters.ActiveOnly && !a.IsActive {
			continue
		}
		alerts = append(alerts, *a.Clone())
	}
	t.sortNewestFirst(len(alerts), func(i int) string { return alerts[i].ID }, func(i, j int) {
		alerts[i], alerts[j] = alerts[j], alerts[i]
	})
	return alerts, nil
}

func (t *tables) findActiveAlert(stockpileID string, alertType models.AlertType) (*models.StockAlert, error) {
	var match *models.StockAlert
	for _, a := range t.alerts {
		if a.StockpileID != stockpileID || a.Type != alertType || !a.IsActive {
			continue
		}
		if match == nil || t.ord[a.ID] > t.ord[match.ID] {
			match = a
		}
	}
	if match == nil {
		return nil, repositories.ErrNotFound
	}
	return match.Clone(), nil
}

// --- orders ---

func (t *tables) createOrder(o *models.Order) error {
	if _, exists := t.orders[o.ID]; exists {
		return fmt.Errorf("%w: order %s", repositories.ErrDuplicateKey, o.ID)
	}
	for _, existing := range t.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("%w: order number %s", repositories.ErrDuplicateKey, o.OrderNumber)
		}
	}
	t.orders[o.ID] = o.Clone()
	t.nextInsert(o.ID)
	return nil
}

func (t *tables) getOrderByID(id string) (*models.Order, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return o.Clone(), nil
}

func (t *tables) getOrders(filters models.OrderFilters) ([]models.Order, error) {
	orders := []models.Order{}
	for _, o := range t.orders {
		if filters.SiteID != nil && o.SiteID != *filters.SiteID {
			continue
		}
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		if filters.Type != nil && o.Type != *filters.Type {
			continue
		}
		orders = append(orders, *o.Clone())
	}
	t.sortNewestFirst(len(orders), func(i int) string { return orders[i].ID }, func(i, j int) {
		orders[i], orders[j] = orders[j], orders[i]
	})
	return orders, nil
}

// sortNewestFirst orders a slice by descending insertion sequence, which
// matches created_at DESC with a deterministic tiebreak.
func (t *tables) sortNewestFirst(n int, idAt func(i int) string, swap func(i, j int)) {
	sort.Sort(&ordSorter{n: n, t: t, idAt: idAt, swap: swap})
}

type ordSorter struct {
	n    int
	t    *tables
	idAt func(i int) string
	swap func(i, j int)
}

func (s *ordSorter) Len() int      { return s.n }
func (s *ordSorter) Swap(i, j int) { s.swap(i, j) }
func (s *ordSorter) Less(i, j int) bool {
	return s.t.ord[s.idAt(i)] > s.t.ord[s.idAt(j)]
}
