package services

import (
	"errors"
	"fmt"
	"time"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/repositories"
	"weighbridge_backend/pkg/locks"
	"weighbridge_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// TicketService owns the weighing lifecycle of a ticket from creation to
// finalization or void. Every state transition is serialized per ticket via
// the keyed lock manager; finalize additionally serializes on the target
// stockpile because it settles stock.
type TicketService struct {
	store          repositories.Store
	ticketLocks    *locks.KeyedMutex
	stockpileLocks *locks.KeyedMutex
}

func NewTicketService(store repositories.Store, ticketLocks, stockpileLocks *locks.KeyedMutex) *TicketService {
	return &TicketService{store: store, ticketLocks: ticketLocks, stockpileLocks: stockpileLocks}
}

type CreateTicketRequest struct {
	OrderID       *string           `json:"order_id"`
	SiteID        string            `json:"site_id"`
	Type          models.TicketType `json:"type"`
	VehicleID     string            `json:"vehicle_id"`
	DriverID      string            `json:"driver_id"`
	ProductID     string            `json:"product_id"`
	PricePerTonne *decimal.Decimal  `json:"price_per_tonne"`
	Notes         *string           `json:"notes"`
}

// WeighingRequest carries one weighbridge reading with its provenance.
type WeighingRequest struct {
	WeightKg      int64   `json:"weight_kg"`
	WeighbridgeID *string `json:"weighbridge_id"`
	OperatorID    *string `json:"operator_id"`
	ImageURL      *string `json:"image_url"`
}

type FinalizeTicketRequest struct {
	MoisturePercentage *float64 `json:"moisture_percentage"`
	QualityGrade       *string  `json:"quality_grade"`
	QualityNotes       *string  `json:"quality_notes"`
	SealNumber         *string  `json:"seal_number"`
	OperatorID         *string  `json:"operator_id"`
}

type VoidTicketRequest struct {
	Reason     string  `json:"reason"`
	OperatorID *string `json:"operator_id"`
}

// CreateTicket opens a new weighing ticket. When an order is referenced the
// ticket inherits direction, product, and pricing from it; standalone tickets
// must supply all three.
func (s *TicketService) CreateTicket(req CreateTicketRequest) (*models.Ticket, error) {
	if utils.IsEmpty(req.VehicleID) || utils.IsEmpty(req.DriverID) {
		return nil, fmt.Errorf("%w: vehicle_id and driver_id are required", ErrValidation)
	}

	siteID := req.SiteID
	ticketType := req.Type
	productID := req.ProductID
	var pricePerTonne decimal.Decimal

	if req.OrderID != nil {
		order, err := s.store.Orders().GetOrderByID(*req.OrderID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, *req.OrderID)
		}
		if err != nil {
			return nil, err
		}
		if !order.Status.IsWeighable() {
			return nil, fmt.Errorf("%w: order %s has status %s and cannot be weighed against",
				ErrValidation, order.OrderNumber, order.Status)
		}
		if ticketType != "" && ticketType != order.Type {
			return nil, fmt.Errorf("%w: ticket type %s does not match order type %s",
				ErrValidation, ticketType, order.Type)
		}
		if productID != "" && productID != order.ProductID {
			return nil, fmt.Errorf("%w: product %s does not match order product %s",
				ErrValidation, productID, order.ProductID)
		}
		if siteID == "" {
			siteID = order.SiteID
		}
		ticketType = order.Type
		productID = order.ProductID
		pricePerTonne = order.PricePerTonne
	} else {
		if !models.IsValidTicketType(ticketType) {
			return nil, fmt.Errorf("%w: type must be inbound or outbound", ErrValidation)
		}
		if utils.IsEmpty(productID) {
			return nil, fmt.Errorf("%w: product_id is required without an order", ErrValidation)
		}
		if req.PricePerTonne == nil || req.PricePerTonne.IsNegative() {
			return nil, fmt.Errorf("%w: price_per_tonne is required without an order", ErrValidation)
		}
		pricePerTonne = *req.PricePerTonne
	}
	if utils.IsEmpty(siteID) {
		return nil, fmt.Errorf("%w: site_id is required", ErrValidation)
	}

	seq, err := s.store.Tickets().NextTicketSequence()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	ticket := &models.Ticket{
		ID:            newID("ticket"),
		TicketNumber:  fmt.Sprintf("TKT-%d-%04d", now.Year(), seq),
		OrderID:       req.OrderID,
		SiteID:        siteID,
		Type:          ticketType,
		Status:        models.TicketStatusOpen,
		VehicleID:     req.VehicleID,
		DriverID:      req.DriverID,
		ProductID:     productID,
		PricePerTonne: pricePerTonne,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
		SyncStatus:    models.SyncStatusPending,
		Version:       1,
	}

	if err := s.store.Tickets().CreateTicket(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// CaptureTare records the empty-vehicle weighing. The ticket must be open.
func (s *TicketService) CaptureTare(ticketID string, req WeighingRequest) (*models.Ticket, error) {
	if req.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: weight_kg must be positive", ErrValidation)
	}

	release, err := s.lockTicket(ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.loadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(ticket.Status, models.TicketStatusTareCaptured) {
		return nil, fmt.Errorf("%w: cannot capture tare on a %s ticket", ErrInvalidStateTransition, ticket.Status)
	}

	now := time.Now().UTC()
	ticket.TareWeightKg = &req.WeightKg
	ticket.TareCapturedAt = &now
	ticket.TareWeighbridgeID = req.WeighbridgeID
	ticket.TareOperatorID = req.OperatorID
	ticket.TareImageURL = req.ImageURL
	ticket.Status = models.TicketStatusTareCaptured
	ticket.SyncStatus = models.SyncStatusPending
	ticket.UpdatedAt = now

	if err := s.saveTicket(s.store, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// CaptureGross records the loaded-vehicle weighing. Tare must already be
// captured; the two-step sequencing holds regardless of direction.
func (s *TicketService) CaptureGross(ticketID string, req WeighingRequest) (*models.Ticket, error) {
	if req.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: weight_kg must be positive", ErrValidation)
	}

	release, err := s.lockTicket(ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.loadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(ticket.Status, models.TicketStatusGrossCaptured) {
		return nil, fmt.Errorf("%w: cannot capture gross on a %s ticket", ErrInvalidStateTransition, ticket.Status)
	}

	now := time.Now().UTC()
	ticket.GrossWeightKg = &req.WeightKg
	ticket.GrossCapturedAt = &now
	ticket.GrossWeighbridgeID = req.WeighbridgeID
	ticket.GrossOperatorID = req.OperatorID
	ticket.GrossImageURL = req.ImageURL
	ticket.Status = models.TicketStatusGrossCaptured
	ticket.SyncStatus = models.SyncStatusPending
	ticket.UpdatedAt = now

	if err := s.saveTicket(s.store, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// FinalizeTicket computes the net weight, closes the ticket, and settles it
// against the site's stockpile for the product. The ticket update and the
// ledger append commit atomically: either both are visible or neither.
// A negative net is not rejected here; it is a data-quality signal carried
// through to the ledger.
func (s *TicketService) FinalizeTicket(ticketID string, req FinalizeTicketRequest) (*models.Ticket, error) {
	release, err := s.lockTicket(ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.loadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(ticket.Status, models.TicketStatusFinalized) {
		return nil, fmt.Errorf("%w: cannot finalize a %s ticket", ErrInvalidStateTransition, ticket.Status)
	}
	if ticket.TareWeightKg == nil || ticket.GrossWeightKg == nil {
		return nil, fmt.Errorf("%w: both tare and gross weighings are required", ErrIncompleteWeighing)
	}

	stockpile, err := s.store.Stockpiles().FindBySiteAndProduct(ticket.SiteID, ticket.ProductID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: no active stockpile for site %s product %s",
			ErrStockpileNotFound, ticket.SiteID, ticket.ProductID)
	}
	if err != nil {
		return nil, err
	}

	releaseStockpile, err := s.stockpileLocks.Acquire(stockpile.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: stockpile %s", ErrLockTimeout, stockpile.ID)
	}
	defer releaseStockpile()

	// Reload under the lock so the balance snapshot reflects every movement
	// committed before this one.
	stockpile, err = s.store.Stockpiles().GetStockpileByID(stockpile.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	netWeightKg := *ticket.GrossWeightKg - *ticket.TareWeightKg
	netWeightTonnes := utils.KgToTonnes(netWeightKg)
	totalValue := utils.MoneyValue(netWeightTonnes, ticket.PricePerTonne)

	signedQuantity := netWeightTonnes
	if ticket.Type == models.TicketTypeOutbound {
		signedQuantity = netWeightTonnes.Neg()
	}

	ticket.Status = models.TicketStatusFinalized
	ticket.NetWeightKg = &netWeightKg
	ticket.NetWeightTonnes = &netWeightTonnes
	ticket.TotalValue = &totalValue
	ticket.MoisturePercentage = req.MoisturePercentage
	ticket.QualityGrade = req.QualityGrade
	ticket.QualityNotes = req.QualityNotes
	ticket.SealNumber = req.SealNumber
	ticket.FinalizedAt = &now
	ticket.SyncStatus = models.SyncStatusPending
	ticket.UpdatedAt = now

	err = s.store.WithinTx(func(tx repositories.Store) error {
		if err := s.saveTicket(tx, ticket); err != nil {
			return err
		}
		provenance := models.TicketProvenance(ticket.ID, ticket.OrderID)
		_, err := appendMovement(tx, stockpile, signedQuantity, provenance.Kind(ticket.Type),
			provenance, req.OperatorID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := evaluateStockpileAlerts(s.store, stockpile, now); err != nil {
		utils.LogError(err, "alert evaluation after finalize failed")
	}
	return ticket, nil
}

// VoidTicket cancels a ticket before it settles. Finalized tickets cannot be
// voided; a committed ledger entry is compensated with a manual adjustment
// instead.
func (s *TicketService) VoidTicket(ticketID string, req VoidTicketRequest) (*models.Ticket, error) {
	if utils.IsEmpty(req.Reason) {
		return nil, fmt.Errorf("%w: void reason is required", ErrValidation)
	}

	release, err := s.lockTicket(ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.loadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(ticket.Status, models.TicketStatusVoided) {
		return nil, fmt.Errorf("%w: cannot void a %s ticket", ErrInvalidStateTransition, ticket.Status)
	}

	now := time.Now().UTC()
	ticket.Status = models.TicketStatusVoided
	ticket.VoidedAt = &now
	ticket.VoidedBy = req.OperatorID
	ticket.VoidReason = &req.Reason
	ticket.SyncStatus = models.SyncStatusPending
	ticket.UpdatedAt = now

	if err := s.saveTicket(s.store, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// MarkTicketSynced is called by the external synchronizer once a pending
// mutation has been propagated. Allowed in any state, including terminal
// ones; sync bookkeeping is not a business mutation.
func (s *TicketService) MarkTicketSynced(ticketID string) (*models.Ticket, error) {
	release, err := s.lockTicket(ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.loadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.SyncStatus == models.SyncStatusSynced {
		return ticket, nil
	}

	ticket.SyncStatus = models.SyncStatusSynced
	if err := s.saveTicket(s.store, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) GetTicketByID(ticketID string) (*models.Ticket, error) {
	return s.loadTicket(ticketID)
}

func (s *TicketService) GetTickets(filters models.TicketFilters) ([]models.Ticket, error) {
	return s.store.Tickets().GetTickets(filters)
}

func (s *TicketService) lockTicket(ticketID string) (func(), error) {
	release, err := s.ticketLocks.Acquire(ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: ticket %s", ErrLockTimeout, ticketID)
	}
	return release, nil
}

func (s *TicketService) loadTicket(ticketID string) (*models.Ticket, error) {
	ticket, err := s.store.Tickets().GetTicketByID(ticketID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) saveTicket(store repositories.Store, ticket *models.Ticket) error {
	err := store.Tickets().UpdateTicket(ticket, ticket.Version)
	if errors.Is(err, repositories.ErrVersionConflict) {
		return fmt.Errorf("%w: ticket %s", ErrWriteConflict, ticket.ID)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, ticket.ID)
	}
	return err
}
