package booking

import (
	"time"
)

// PaymentStatusEvent records one payment status transition for a booking.
// Together with the transition table in enums.go this gives an auditable
// ledger of every state change.
type PaymentStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for booking relationship
	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	Booking   Booking `gorm:"foreignKey:BookingID" json:"booking"`

	FromStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	Event      PaymentEvent  `gorm:"type:varchar(50);not null;index" json:"event"`
	CreatedBy  string        `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the PaymentStatusEvent model
func (PaymentStatusEvent) TableName() string {
	return "payment_status_events"
}
