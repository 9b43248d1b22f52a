package catalog

import (
	"time"
)

// SubscriptionPlan is a catalog entity describing how a subscription expands
// into deliveries: how many days it runs, how many meals are delivered per
// day and on which weekdays.
//
// Plans referenced by historical booking items must never be hard-deleted;
// deactivation is the only removal path, so past orders keep resolving.
type SubscriptionPlan struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	DurationDays int     `gorm:"not null" json:"duration_days"`
	MealsPerDay  int     `gorm:"not null;default:1" json:"meals_per_day"`
	Frequency    string  `gorm:"type:varchar(100);not null;default:daily" json:"frequency"` // daily, weekdays, custom:mon,wed,fri
	Price        float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	IsActive     bool    `gorm:"type:bool;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
