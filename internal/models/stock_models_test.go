package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMovementProvenanceValidate(t *testing.T) {
	ticketID := "ticket_1"
	orderID := "order_1"
	reason := AdjustmentReasonSpillage
	notes := "pile slumped"
	otherID := "stockpile_2"

	require.NoError(t, TicketProvenance(ticketID, nil).Validate())
	require.NoError(t, TicketProvenance(ticketID, &orderID).Validate())
	require.NoError(t, AdjustmentProvenance(reason, nil).Validate())
	require.NoError(t, AdjustmentProvenance(reason, &notes).Validate())
	require.NoError(t, TransferProvenance(otherID).Validate())

	// Zero kinds.
	require.Error(t, MovementProvenance{}.Validate())

	// Two kinds.
	require.Error(t, MovementProvenance{
		TicketID:         &ticketID,
		AdjustmentReason: &reason,
	}.Validate())

	// Orphaned companions.
	require.Error(t, MovementProvenance{
		AdjustmentReason: &reason,
		OrderID:          &orderID,
	}.Validate())
	require.Error(t, MovementProvenance{
		TicketID:        &ticketID,
		AdjustmentNotes: &notes,
	}.Validate())
}

func TestMovementProvenanceKind(t *testing.T) {
	require.Equal(t, MovementTypeInbound, TicketProvenance("t1", nil).Kind(TicketTypeInbound))
	require.Equal(t, MovementTypeOutbound, TicketProvenance("t1", nil).Kind(TicketTypeOutbound))
	require.Equal(t, MovementTypeAdjustment, AdjustmentProvenance(AdjustmentReasonOther, nil).Kind(TicketTypeInbound))
	require.Equal(t, MovementTypeTransfer, TransferProvenance("sp2").Kind(TicketTypeOutbound))
}

func TestIsValidAdjustmentReason(t *testing.T) {
	for _, r := range []AdjustmentReason{
		AdjustmentReasonPhysicalCount, AdjustmentReasonEvaporationLoss,
		AdjustmentReasonSpillage, AdjustmentReasonQualityDowngrade,
		AdjustmentReasonSystemCorrection, AdjustmentReasonTheft,
		AdjustmentReasonOther,
	} {
		require.True(t, IsValidAdjustmentReason(r), string(r))
	}
	require.False(t, IsValidAdjustmentReason("shrinkage"))
	require.False(t, IsValidAdjustmentReason(""))
}
