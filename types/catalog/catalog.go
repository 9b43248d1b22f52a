package catalog

import (
	"fmt"
)

// CreateProductRequest is the admin payload for adding a meal to the catalog.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"omitempty"`
	Price       float64 `json:"price" validate:"required,min=0"`
	IsVeg       bool    `json:"is_veg"`
}

func (r CreateProductRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	return nil
}

// CreatePlanRequest is the admin payload for adding a subscription plan.
type CreatePlanRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=255"`
	DurationDays int     `json:"duration_days" validate:"required,min=1,max=365"`
	MealsPerDay  int     `json:"meals_per_day" validate:"required,min=1,max=2"`
	Frequency    string  `json:"frequency" validate:"omitempty,max=100"`
	Price        float64 `json:"price" validate:"required,min=0"`
}

func (r CreatePlanRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.DurationDays < 1 || r.DurationDays > 365 {
		return fmt.Errorf("duration_days must be between 1 and 365")
	}
	if r.MealsPerDay < 1 || r.MealsPerDay > 2 {
		return fmt.Errorf("meals_per_day must be 1 or 2")
	}
	if r.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	return nil
}
