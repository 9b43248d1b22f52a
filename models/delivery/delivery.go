package delivery

import (
	"time"

	"homely-khana/models/booking"
	"homely-khana/models/user"
)

// Delivery is one scheduled drop-off produced by expanding a subscription
// booking item. The address snapshot is frozen at creation time and is never
// re-resolved from the live addresses table.
//
// The composite unique index keeps expansion idempotent: at most one row per
// (booking item, calendar date, slot, meal type). Two meals a day on the same
// item are two rows differing in slot.
type Delivery struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingItemID uint                `gorm:"not null;index;uniqueIndex:uq_deliveries_item_date_meal" json:"booking_item_id"`
	BookingItem   booking.BookingItem `gorm:"foreignKey:BookingItemID;constraint:OnDelete:CASCADE" json:"-"`

	DeliveryDate time.Time `gorm:"type:date;not null;index;uniqueIndex:uq_deliveries_item_date_meal" json:"delivery_date"`
	Slot         Slot      `gorm:"type:varchar(20);not null;default:lunch;uniqueIndex:uq_deliveries_item_date_meal" json:"slot"`
	MealType     string    `gorm:"type:varchar(50);not null;default:regular;uniqueIndex:uq_deliveries_item_date_meal" json:"meal_type"`

	Status Status `gorm:"type:varchar(30);not null;default:scheduled;index" json:"status"`

	AddressSnapshot AddressSnapshot `gorm:"type:json;not null" json:"address_snapshot"`

	// Optional staff assignment; delivery references but does not own the user.
	AssignedToID *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo   *user.User `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"assigned_to,omitempty"`

	DriverNotes *string `gorm:"type:text" json:"driver_notes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
