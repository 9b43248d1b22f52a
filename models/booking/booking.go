package booking

import (
	"time"

	"homely-khana/models/address"
	"homely-khana/models/user"
)

// Booking represents one purchase transaction. Rows are append-only: payment
// confirmation mutates payment_status, nothing ever deletes a booking.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for users relationship
	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	// Foreign key for address relationship. The live address is only read
	// once, at fulfillment time, to build the delivery snapshot.
	AddressID   uint            `gorm:"not null" json:"address_id"`
	AddressInfo address.Address `gorm:"foreignKey:AddressID" json:"address_info"`

	TotalAmount   float64       `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:pending" json:"payment_status"`

	// Gateway order id returned by the payment provider; nil for COD.
	GatewayOrderID *string `gorm:"type:varchar(255);unique" json:"gateway_order_id,omitempty"`

	// Client-supplied key so a double-submitted checkout resolves to the
	// same booking instead of creating a duplicate.
	IdempotencyKey *string `gorm:"type:varchar(255);unique" json:"idempotency_key,omitempty"`

	Items []BookingItem `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
