package address

import (
	"time"

	"homely-khana/models/user"
)

// Address represents a saved delivery address. Bookings reference it by id;
// deliveries carry a frozen JSON snapshot taken at fulfillment time, so edits
// here never affect already-materialized deliveries.
type Address struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Label         string  `gorm:"type:varchar(50);not null;default:home" json:"label"` // home, office, other
	RecipientName string  `gorm:"type:varchar(255);not null" json:"recipient_name"`
	Phone         string  `gorm:"type:varchar(20);not null" json:"phone"`
	Line1         string  `gorm:"type:varchar(255);not null" json:"line1"`
	Line2         *string `gorm:"type:varchar(255)" json:"line2,omitempty"`
	Landmark      *string `gorm:"type:varchar(255)" json:"landmark,omitempty"`
	City          string  `gorm:"type:varchar(100);not null" json:"city"`
	State         string  `gorm:"type:varchar(100);not null" json:"state"`
	Pincode       string  `gorm:"type:varchar(10);not null" json:"pincode"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
