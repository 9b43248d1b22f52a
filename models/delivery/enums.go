package delivery

import (
	"fmt"
)

// Slot is the time window a delivery goes out in.
type Slot string

const (
	SlotLunch  Slot = "lunch"
	SlotDinner Slot = "dinner"
)

func (s Slot) String() string {
	return string(s)
}

func (s Slot) IsValid() bool {
	switch s {
	case SlotLunch, SlotDinner:
		return true
	default:
		return false
	}
}

// Status is the lifecycle state of a delivery.
type Status string

const (
	StatusScheduled      Status = "scheduled"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusSkipped        Status = "skipped"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal returns true when no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusSkipped
}

// Event is an action applied to a delivery.
type Event string

const (
	EventDispatch Event = "dispatch"
	EventDeliver  Event = "deliver"
	EventCancel   Event = "cancel"
	EventSkip     Event = "skip"
)

// deliveryTransitions centralizes the legal transitions; staff status update
// handlers and the customer skip path all go through Transition.
var deliveryTransitions = map[Status]map[Event]Status{
	StatusScheduled: {
		EventDispatch: StatusOutForDelivery,
		EventCancel:   StatusCancelled,
		EventSkip:     StatusSkipped,
	},
	StatusOutForDelivery: {
		EventDeliver: StatusDelivered,
		EventCancel:  StatusCancelled,
	},
}

// Transition returns the next status for the given event, or an error when
// the event is not legal from the current status.
func (s Status) Transition(event Event) (Status, error) {
	if next, ok := deliveryTransitions[s][event]; ok {
		return next, nil
	}
	return s, fmt.Errorf("delivery event %q not allowed from status %q", event, s)
}
