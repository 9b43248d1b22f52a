package booking

import (
	"fmt"
)

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCOD    PaymentMethod = "cod"
)

func (pm PaymentMethod) String() string {
	return string(pm)
}

func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentMethodOnline, PaymentMethodCOD:
		return true
	default:
		return false
	}
}

// PaymentStatus is the payment state of a booking.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (ps PaymentStatus) String() string {
	return string(ps)
}

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// PaymentEvent is something that happened to a booking's payment.
type PaymentEvent string

const (
	PaymentEventSuccess PaymentEvent = "payment_success"
	PaymentEventFailure PaymentEvent = "payment_failed"
	PaymentEventRefund  PaymentEvent = "refund"
)

// paymentTransitions is the single legal-transition table for payment state.
// Every write path goes through Transition instead of re-deriving legality
// with ad-hoc WHERE clauses.
var paymentTransitions = map[PaymentStatus]map[PaymentEvent]PaymentStatus{
	PaymentStatusPending: {
		PaymentEventSuccess: PaymentStatusCompleted,
		PaymentEventFailure: PaymentStatusFailed,
	},
	PaymentStatusCompleted: {
		PaymentEventRefund: PaymentStatusRefunded,
	},
}

// Transition returns the next payment status for the given event, or an
// error when the event is not legal from the current status.
func (ps PaymentStatus) Transition(event PaymentEvent) (PaymentStatus, error) {
	if next, ok := paymentTransitions[ps][event]; ok {
		return next, nil
	}
	return ps, fmt.Errorf("payment event %q not allowed from status %q", event, ps)
}
