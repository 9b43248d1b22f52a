package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryTransitionAllowed(t *testing.T) {
	tests := []struct {
		from  Status
		event Event
		want  Status
	}{
		{StatusScheduled, EventDispatch, StatusOutForDelivery},
		{StatusScheduled, EventCancel, StatusCancelled},
		{StatusScheduled, EventSkip, StatusSkipped},
		{StatusOutForDelivery, EventDeliver, StatusDelivered},
		{StatusOutForDelivery, EventCancel, StatusCancelled},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.event)
		require.NoError(t, err, "%s + %s", tt.from, tt.event)
		assert.Equal(t, tt.want, got)
	}
}

func TestDeliveryTransitionRejected(t *testing.T) {
	tests := []struct {
		from  Status
		event Event
	}{
		{StatusScheduled, EventDeliver},
		{StatusOutForDelivery, EventDispatch},
		{StatusOutForDelivery, EventSkip},
		{StatusDelivered, EventCancel},
		{StatusDelivered, EventDeliver},
		{StatusCancelled, EventDispatch},
		{StatusSkipped, EventDispatch},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.event)
		assert.Error(t, err, "%s + %s must be rejected", tt.from, tt.event)
		assert.Equal(t, tt.from, got, "status must be unchanged on rejection")
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusScheduled.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusSkipped.IsTerminal())
}
