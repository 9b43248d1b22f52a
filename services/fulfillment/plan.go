package fulfillment

import (
	"errors"

	"homely-khana/models/catalog"
	"homely-khana/types"

	"gorm.io/gorm"
)

// PlanSpec is what the expansion needs to know about a subscription plan.
type PlanSpec struct {
	DurationDays int
	MealsPerDay  int
	Frequency    string
}

// ResolvePlan resolves a subscription-plan id into its expansion parameters.
// Inactive plans still resolve: historical booking items must keep working
// after a plan is deactivated, which is why plans are never hard-deleted.
func ResolvePlan(tx *gorm.DB, planID uint) (PlanSpec, error) {
	var plan catalog.SubscriptionPlan
	if err := tx.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PlanSpec{}, &types.NotFoundError{Entity: "subscription plan", ID: planID}
		}
		return PlanSpec{}, err
	}

	return PlanSpec{
		DurationDays: plan.DurationDays,
		MealsPerDay:  plan.MealsPerDay,
		Frequency:    plan.Frequency,
	}, nil
}
