package services

import (
	"errors"
	"fmt"
	"time"

	"weighbridge_backend/internal/models"
	"weighbridge_backend/internal/repositories"
	"weighbridge_backend/pkg/utils"
)

// AlertService exposes the acknowledge/resolve sub-lifecycle of stock
// alerts. Raising and auto-resolving is the evaluator's job; this service
// only handles operator actions.
type AlertService struct {
	store repositories.Store
}

func NewAlertService(store repositories.Store) *AlertService {
	return &AlertService{store: store}
}

type ResolveAlertRequest struct {
	Notes *string `json:"notes"`
}

// AcknowledgeAlert marks an active alert as seen by an operator.
// Acknowledging does not resolve; the alert stays active until its condition
// clears or an operator resolves it.
func (s *AlertService) AcknowledgeAlert(alertID, operatorID string) (*models.StockAlert, error) {
	if utils.IsEmpty(operatorID) {
		return nil, fmt.Errorf("%w: operator identity is required", ErrValidation)
	}

	alert, err := s.loadAlert(alertID)
	if err != nil {
		return nil, err
	}
	if !alert.IsActive {
		return nil, fmt.Errorf("%w: alert %s is no longer active", ErrValidation, alertID)
	}
	if alert.IsAcknowledged {
		return alert, nil
	}

	now := time.Now().UTC()
	alert.IsAcknowledged = true
	alert.AcknowledgedBy = &operatorID
	alert.AcknowledgedAt = &now
	alert.UpdatedAt = now

	if err := s.store.Alerts().UpdateAlert(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// ResolveAlert closes an alert by operator action, deactivating it.
func (s *AlertService) ResolveAlert(alertID, operatorID string, req ResolveAlertRequest) (*models.StockAlert, error) {
	if utils.IsEmpty(operatorID) {
		return nil, fmt.Errorf("%w: operator identity is required", ErrValidation)
	}

	alert, err := s.loadAlert(alertID)
	if err != nil {
		return nil, err
	}
	if alert.IsResolved {
		return alert, nil
	}

	now := time.Now().UTC()
	alert.IsResolved = true
	alert.IsActive = false
	alert.ResolvedBy = &operatorID
	alert.ResolvedAt = &now
	alert.ResolutionNotes = req.Notes
	alert.UpdatedAt = now

	if err := s.store.Alerts().UpdateAlert(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *AlertService) GetAlertByID(alertID string) (*models.StockAlert, error) {
	return s.loadAlert(alertID)
}

func (s *AlertService) GetAlerts(filters models.AlertFilters) ([]models.StockAlert, error) {
	return s.store.Alerts().GetAlerts(filters)
}

func (s *AlertService) loadAlert(alertID string) (*models.StockAlert, error) {
	alert, err := s.store.Alerts().GetAlertByID(alertID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	if err != nil {
		return nil, err
	}
	return alert, nil
}
