package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusTareCaptured, true},
		{TicketStatusTareCaptured, TicketStatusGrossCaptured, true},
		{TicketStatusGrossCaptured, TicketStatusFinalized, true},

		// No skipping steps, no going backwards.
		{TicketStatusOpen, TicketStatusGrossCaptured, false},
		{TicketStatusOpen, TicketStatusFinalized, false},
		{TicketStatusTareCaptured, TicketStatusFinalized, false},
		{TicketStatusGrossCaptured, TicketStatusTareCaptured, false},
		{TicketStatusTareCaptured, TicketStatusOpen, false},

		// Voiding is allowed from any non-terminal state.
		{TicketStatusOpen, TicketStatusVoided, true},
		{TicketStatusTareCaptured, TicketStatusVoided, true},
		{TicketStatusGrossCaptured, TicketStatusVoided, true},
		{TicketStatusFinalized, TicketStatusVoided, false},
		{TicketStatusVoided, TicketStatusVoided, false},

		// Terminal states admit nothing.
		{TicketStatusFinalized, TicketStatusOpen, false},
		{TicketStatusVoided, TicketStatusTareCaptured, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CanTransition(tc.from, tc.to),
			"CanTransition(%s, %s)", tc.from, tc.to)
	}
}

func TestIsTerminalTicketStatus(t *testing.T) {
	require.True(t, IsTerminalTicketStatus(TicketStatusFinalized))
	require.True(t, IsTerminalTicketStatus(TicketStatusVoided))
	require.False(t, IsTerminalTicketStatus(TicketStatusOpen))
	require.False(t, IsTerminalTicketStatus(TicketStatusTareCaptured))
	require.False(t, IsTerminalTicketStatus(TicketStatusGrossCaptured))
}
