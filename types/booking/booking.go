package booking

import (
	"fmt"
)

// CheckoutItemRequest is one cart line in a checkout submission.
type CheckoutItemRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	PlanID    *uint  `json:"plan_id,omitempty"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Slot      string `json:"slot" validate:"omitempty,oneof=lunch dinner"`
	MealType  string `json:"meal_type" validate:"omitempty,max=50"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD, only for subscription items
}

// CheckoutRequest represents the request payload for creating a booking.
type CheckoutRequest struct {
	AddressID      uint                  `json:"address_id" validate:"required"`
	PaymentMethod  string                `json:"payment_method" validate:"required,oneof=online cod"`
	IdempotencyKey string                `json:"idempotency_key" validate:"omitempty,max=255"`
	ReturnURL      string                `json:"return_url" validate:"omitempty,max=2048"`
	Items          []CheckoutItemRequest `json:"items" validate:"required,min=1"`
}

// Validate checks the checkout payload before any database work.
func (r CheckoutRequest) Validate() error {
	if r.AddressID == 0 {
		return fmt.Errorf("address_id is required")
	}
	if r.PaymentMethod != "online" && r.PaymentMethod != "cod" {
		return fmt.Errorf("payment_method must be either 'online' or 'cod'")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("cart is empty")
	}
	for i, item := range r.Items {
		if item.ProductID == 0 {
			return fmt.Errorf("items[%d].product_id is required", i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("items[%d].quantity must be at least 1", i)
		}
		// A subscription's schedule is created once per item; duplicates need
		// separate cart lines so each line gets its own delivery rows.
		if item.PlanID != nil && item.Quantity != 1 {
			return fmt.Errorf("items[%d].quantity must be 1 for subscription items; add the plan as separate items instead", i)
		}
		if item.Slot != "" && item.Slot != "lunch" && item.Slot != "dinner" {
			return fmt.Errorf("items[%d].slot must be either 'lunch' or 'dinner'", i)
		}
	}
	return nil
}
