package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/repositories"
	"weighbridge_backend/pkg/locks"
	"weighbridge_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// StockService owns manual ledger appends: adjustments against one stockpile
// and transfers between two. Balance updates serialize per stockpile on the
// same lock manager finalize uses.
type StockService struct {
	store          repositories.Store
	stockpileLocks *locks.KeyedMutex
}

func NewStockService(store repositories.Store, stockpileLocks *locks.KeyedMutex) *StockService {
	return &StockService{store: store, stockpileLocks: stockpileLocks}
}

type AdjustmentRequest struct {
	StockpileID    string                  `json:"stockpile_id"`
	QuantityTonnes decimal.Decimal         `json:"quantity_tonnes"`
	Reason         models.AdjustmentReason `json:"reason"`
	Notes          *string                 `json:"notes"`
	OperatorID     *string                 `json:"operator_id"`
}

type TransferRequest struct {
	FromStockpileID string          `json:"from_stockpile_id"`
	ToStockpileID   string          `json:"to_stockpile_id"`
	QuantityTonnes  decimal.Decimal `json:"quantity_tonnes"`
	OperatorID      *string         `json:"operator_id"`
}

// TransferResult is the pair of linked movements a transfer produces, with
// both updated stockpile projections.
type TransferResult struct {
	Outbound *models.StockMovement `json:"outbound"`
	Inbound  *models.StockMovement `json:"inbound"`
	From     *models.Stockpile     `json:"from"`
	To       *models.Stockpile     `json:"to"`
}

// CreateAdjustment appends a manual correction to the ledger. The quantity is
// signed: negative for losses, positive for found stock. The reason is
// mandatory and drawn from the closed enumeration.
func (s *StockService) CreateAdjustment(req AdjustmentRequest) (*models.StockMovement, *models.Stockpile, error) {
	if utils.IsEmpty(req.StockpileID) {
		return nil, nil, fmt.Errorf("%w: stockpile_id is required", ErrValidation)
	}
	if req.QuantityTonnes.IsZero() {
		return nil, nil, fmt.Errorf("%w: quantity_tonnes must be non-zero", ErrValidation)
	}
	if !models.IsValidAdjustmentReason(req.Reason) {
		return nil, nil, fmt.Errorf("%w: unknown adjustment reason %q", ErrValidation, req.Reason)
	}

	release, err := s.stockpileLocks.Acquire(req.StockpileID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stockpile %s", ErrLockTimeout, req.StockpileID)
	}
	defer release()

	stockpile, err := s.loadStockpile(req.StockpileID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	var movement *models.StockMovement
	err = s.store.WithinTx(func(tx repositories.Store) error {
		var err error
		movement, err = appendMovement(tx, stockpile, req.QuantityTonnes, models.MovementTypeAdjustment,
			models.AdjustmentProvenance(req.Reason, req.Notes), req.OperatorID, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if err := evaluateStockpileAlerts(s.store, stockpile, now); err != nil {
		utils.LogError(err, "alert evaluation after adjustment failed")
	}
	return movement, stockpile, nil
}

// CreateTransfer moves stock between two stockpiles of the same product as
// two linked ledger entries committed in one transaction. Locks are taken in
// sorted stockpile-id order so concurrent opposing transfers cannot deadlock.
func (s *StockService) CreateTransfer(req TransferRequest) (*TransferResult, error) {
	if utils.IsEmpty(req.FromStockpileID) || utils.IsEmpty(req.ToStockpileID) {
		return nil, fmt.Errorf("%w: from_stockpile_id and to_stockpile_id are required", ErrValidation)
	}
	if req.FromStockpileID == req.ToStockpileID {
		return nil, fmt.Errorf("%w: cannot transfer a stockpile onto itself", ErrValidation)
	}
	if !req.QuantityTonnes.IsPositive() {
		return nil, fmt.Errorf("%w: quantity_tonnes must be positive", ErrValidation)
	}

	lockOrder := []string{req.FromStockpileID, req.ToStockpileID}
	sort.Strings(lockOrder)
	for _, id := range lockOrder {
		release, err := s.stockpileLocks.Acquire(id)
		if err != nil {
			return nil, fmt.Errorf("%w: stockpile %s", ErrLockTimeout, id)
		}
		defer release()
	}

	from, err := s.loadStockpile(req.FromStockpileID)
	if err != nil {
		return nil, err
	}
	to, err := s.loadStockpile(req.ToStockpileID)
	if err != nil {
		return nil, err
	}
	if from.ProductID != to.ProductID {
		return nil, fmt.Errorf("%w: cannot transfer between different products", ErrValidation)
	}

	now := time.Now().UTC()
	result := &TransferResult{From: from, To: to}
	err = s.store.WithinTx(func(tx repositories.Store) error {
		var err error
		result.Outbound, err = appendMovement(tx, from, req.QuantityTonnes.Neg(), models.MovementTypeTransfer,
			models.TransferProvenance(to.ID), req.OperatorID, now)
		if err != nil {
			return err
		}
		result.Inbound, err = appendMovement(tx, to, req.QuantityTonnes, models.MovementTypeTransfer,
			models.TransferProvenance(from.ID), req.OperatorID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := evaluateStockpileAlerts(s.store, from, now); err != nil {
		utils.LogError(err, "alert evaluation after transfer failed")
	}
	if err := evaluateStockpileAlerts(s.store, to, now); err != nil {
		utils.LogError(err, "alert evaluation after transfer failed")
	}
	return result, nil
}

func (s *StockService) GetStockpileByID(id string) (*models.Stockpile, error) {
	return s.loadStockpile(id)
}

func (s *StockService) GetStockpiles(filters models.StockpileFilters) ([]models.Stockpile, error) {
	return s.store.Stockpiles().GetStockpiles(filters)
}

func (s *StockService) GetMovements(filters models.MovementFilters) ([]models.StockMovement, error) {
	return s.store.StockMovements().GetMovements(filters)
}

// MarkMovementSynced flips sync bookkeeping for one ledger entry.
func (s *StockService) MarkMovementSynced(id string) error {
	err := s.store.StockMovements().MarkMovementSynced(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrMovementNotFound, id)
	}
	return err
}

func (s *StockService) loadStockpile(id string) (*models.Stockpile, error) {
	stockpile, err := s.store.Stockpiles().GetStockpileByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrStockpileNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return stockpile, nil
}
