package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentTransitionAllowed(t *testing.T) {
	tests := []struct {
		from  PaymentStatus
		event PaymentEvent
		want  PaymentStatus
	}{
		{PaymentStatusPending, PaymentEventSuccess, PaymentStatusCompleted},
		{PaymentStatusPending, PaymentEventFailure, PaymentStatusFailed},
		{PaymentStatusCompleted, PaymentEventRefund, PaymentStatusRefunded},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.event)
		require.NoError(t, err, "%s + %s", tt.from, tt.event)
		assert.Equal(t, tt.want, got)
	}
}

func TestPaymentTransitionRejected(t *testing.T) {
	tests := []struct {
		from  PaymentStatus
		event PaymentEvent
	}{
		{PaymentStatusCompleted, PaymentEventSuccess},
		{PaymentStatusCompleted, PaymentEventFailure},
		{PaymentStatusFailed, PaymentEventSuccess},
		{PaymentStatusFailed, PaymentEventRefund},
		{PaymentStatusRefunded, PaymentEventRefund},
		{PaymentStatusPending, PaymentEventRefund},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.event)
		assert.Error(t, err, "%s + %s must be rejected", tt.from, tt.event)
		assert.Equal(t, tt.from, got, "status must be unchanged on rejection")
	}
}

func TestPaymentStatusIsValid(t *testing.T) {
	assert.True(t, PaymentStatusPending.IsValid())
	assert.True(t, PaymentStatusRefunded.IsValid())
	assert.False(t, PaymentStatus("cancelled").IsValid())
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, PaymentMethodOnline.IsValid())
	assert.True(t, PaymentMethodCOD.IsValid())
	assert.False(t, PaymentMethod("upi").IsValid())
}
