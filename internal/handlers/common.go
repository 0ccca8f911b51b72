package handlers

import (
	"errors"
	"net/http"

	"weighbridge_backend/internal/services"
	"weighbridge_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service-layer errors to the standard APIError
// envelope. Retryable contention errors carry the retryable hint so clients
// can resubmit without risking duplicate side effects.
func respondServiceError(c *gin.Context, err error, context string) {
	utils.LogError(err, context)

	switch {
	case errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, services.ErrStockpileNotFound),
		errors.Is(err, services.ErrMovementNotFound),
		errors.Is(err, services.ErrAlertNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))

	case errors.Is(err, services.ErrInvalidStateTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidStateTransition, err.Error(), ""))

	case errors.Is(err, services.ErrIncompleteWeighing):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeIncompleteWeighing, err.Error(), ""))

	case errors.Is(err, services.ErrBalanceViolation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeBalanceViolation, err.Error(), ""))

	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))

	case errors.Is(err, services.ErrDuplicate):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))

	case errors.Is(err, services.ErrLockTimeout):
		utils.RespondWithError(c, utils.NewRetryableAPIError(http.StatusServiceUnavailable, utils.ErrCodeLockTimeout, err.Error(), ""))

	case errors.Is(err, services.ErrWriteConflict):
		utils.RespondWithError(c, utils.NewRetryableAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))

	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error", ""))
	}
}

// operatorID returns the authenticated operator identity set by the auth
// middleware, or the fallback supplied in the request body when the edge
// deployment runs without tokens.
func operatorID(c *gin.Context, fallback *string) *string {
	if id := c.GetString("operatorID"); id != "" {
		return &id
	}
	return fallback
}
