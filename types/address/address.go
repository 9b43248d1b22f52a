package address

import (
	"fmt"

	"homely-khana/utils"
)

// CreateAddressRequest is the payload for saving a delivery address.
type CreateAddressRequest struct {
	Label         string  `json:"label" validate:"omitempty,oneof=home office other"`
	RecipientName string  `json:"recipient_name" validate:"required,min=1,max=255"`
	Phone         string  `json:"phone" validate:"required"`
	Line1         string  `json:"line1" validate:"required,min=1,max=255"`
	Line2         *string `json:"line2" validate:"omitempty,max=255"`
	Landmark      *string `json:"landmark" validate:"omitempty,max=255"`
	City          string  `json:"city" validate:"required,min=1,max=100"`
	State         string  `json:"state" validate:"required,min=1,max=100"`
	Pincode       string  `json:"pincode" validate:"required,len=6"`
}

func (r CreateAddressRequest) Validate() error {
	if r.RecipientName == "" {
		return fmt.Errorf("recipient_name is required")
	}
	if !utils.ValidatePhoneNumber(r.Phone) {
		return fmt.Errorf("phone must be a valid mobile number")
	}
	if r.Line1 == "" {
		return fmt.Errorf("line1 is required")
	}
	if r.City == "" {
		return fmt.Errorf("city is required")
	}
	if r.State == "" {
		return fmt.Errorf("state is required")
	}
	if len(r.Pincode) != 6 {
		return fmt.Errorf("pincode must be 6 digits")
	}
	switch r.Label {
	case "", "home", "office", "other":
		return nil
	default:
		return fmt.Errorf("label must be one of 'home', 'office', 'other'")
	}
}
