package fulfillment

import (
	"time"

	bookingModel "homely-khana/models/booking"
	deliveryModel "homely-khana/models/delivery"

	"gorm.io/gorm"
)

// MaterializeDeliveries inserts one scheduled Delivery row per generated
// date, all carrying the same frozen address snapshot. It must run inside
// the same transaction as the booking writes that preceded it, so a failure
// here rolls back the entire order instead of leaving a paid booking with no
// deliveries.
//
// A plan with two meals per day fans each date out across the lunch and
// dinner slots; otherwise the item's own slot is used.
func MaterializeDeliveries(tx *gorm.DB, item *bookingModel.BookingItem, dates []time.Time, mealsPerDay int, snapshot deliveryModel.AddressSnapshot) (int, error) {
	slots := []deliveryModel.Slot{deliveryModel.Slot(item.Slot)}
	if mealsPerDay >= 2 {
		slots = []deliveryModel.Slot{deliveryModel.SlotLunch, deliveryModel.SlotDinner}
	}

	created := 0
	for _, date := range dates {
		for _, slot := range slots {
			row := deliveryModel.Delivery{
				BookingItemID:   item.ID,
				DeliveryDate:    date,
				Slot:            slot,
				MealType:        item.MealType,
				Status:          deliveryModel.StatusScheduled,
				AddressSnapshot: snapshot,
			}
			if err := tx.Create(&row).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}
