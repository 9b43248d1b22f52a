package booking

import (
	"time"

	"homely-khana/models/catalog"
)

// BookingItem is one line item within a booking. Owned exclusively by its
// booking (cascade-deleted with it) and immutable after creation.
type BookingItem struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	Booking   Booking `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`

	ProductID uint            `gorm:"not null" json:"product_id"`
	Product   catalog.Product `gorm:"foreignKey:ProductID" json:"product"`

	// Nil for one-off purchases; set when the item is a subscription.
	PlanID *uint                     `gorm:"index" json:"plan_id,omitempty"`
	Plan   *catalog.SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`

	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Total     float64 `gorm:"type:decimal(10,2);not null" json:"total"`

	Slot     string `gorm:"type:varchar(20);not null;default:lunch" json:"slot"`
	MealType string `gorm:"type:varchar(50);not null;default:regular" json:"meal_type"`

	// First day the customer asked deliveries to begin. The sequencer clamps
	// it to tomorrow, so a past date is harmless.
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
