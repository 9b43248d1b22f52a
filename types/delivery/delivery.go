package delivery

import (
	"fmt"
)

// UpdateStatusRequest is the staff-facing payload to move a delivery through
// its lifecycle (dispatch, deliver, cancel).
type UpdateStatusRequest struct {
	DeliveryID  uint   `json:"delivery_id" validate:"required"`
	Event       string `json:"event" validate:"required,oneof=dispatch deliver cancel"`
	DriverNotes string `json:"driver_notes" validate:"omitempty"`
}

func (r UpdateStatusRequest) Validate() error {
	if r.DeliveryID == 0 {
		return fmt.Errorf("delivery_id is required")
	}
	switch r.Event {
	case "dispatch", "deliver", "cancel":
		return nil
	default:
		return fmt.Errorf("event must be one of 'dispatch', 'deliver', 'cancel'")
	}
}

// SkipRequest is the customer-facing payload to skip one scheduled delivery.
type SkipRequest struct {
	DeliveryID uint `json:"delivery_id" validate:"required"`
}

func (r SkipRequest) Validate() error {
	if r.DeliveryID == 0 {
		return fmt.Errorf("delivery_id is required")
	}
	return nil
}

// AssignRequest assigns a staff user to a delivery.
type AssignRequest struct {
	DeliveryID uint `json:"delivery_id" validate:"required"`
	StaffID    uint `json:"staff_id" validate:"required"`
}

func (r AssignRequest) Validate() error {
	if r.DeliveryID == 0 {
		return fmt.Errorf("delivery_id is required")
	}
	if r.StaffID == 0 {
		return fmt.Errorf("staff_id is required")
	}
	return nil
}
