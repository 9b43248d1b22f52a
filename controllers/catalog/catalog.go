package catalog

import (
	"errors"
	"fmt"
	"strconv"

	"homely-khana/logger"
	catalogModel "homely-khana/models/catalog"
	"homely-khana/services/sequencer"
	"homely-khana/types"
	catalogTypes "homely-khana/types/catalog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CatalogController handles product and subscription plan management
type CatalogController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewCatalogController creates a new catalog controller
func NewCatalogController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *CatalogController {
	return &CatalogController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// ListProducts returns the active catalog.
func (cc *CatalogController) ListProducts(c *fiber.Ctx) error {
	var products []catalogModel.Product
	if err := cc.DB.Where("is_active = ?", true).Order("name ASC").Find(&products).Error; err != nil {
		logger.Error("Database error while listing products", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Products retrieved successfully",
		Data:    products,
	})
}

// CreateProduct adds a meal to the catalog.
func (cc *CatalogController) CreateProduct(c *fiber.Ctx) error {
	var req catalogTypes.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	product := catalogModel.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsVeg:       req.IsVeg,
		IsActive:    true,
	}
	if err := cc.DB.Create(&product).Error; err != nil {
		logger.Error("Failed to create product", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	logger.Success(fmt.Sprintf("Product %d (%s) created", product.ID, product.Name))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Product created successfully",
		Data:    product,
	})
}

// DeactivateProduct removes a product from the storefront without touching
// historical bookings that reference it.
func (cc *CatalogController) DeactivateProduct(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid product id",
			Data:    nil,
		})
	}

	var product catalogModel.Product
	if err := cc.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Product not found",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching product", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if err := cc.DB.Model(&product).Update("is_active", false).Error; err != nil {
		logger.Error("Failed to deactivate product", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}
	product.IsActive = false

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Product deactivated",
		Data:    product,
	})
}

// ListPlans returns the active subscription plans.
func (cc *CatalogController) ListPlans(c *fiber.Ctx) error {
	var plans []catalogModel.SubscriptionPlan
	if err := cc.DB.Where("is_active = ?", true).Order("duration_days ASC").Find(&plans).Error; err != nil {
		logger.Error("Database error while listing plans", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Plans retrieved successfully",
		Data:    plans,
	})
}

// CreatePlan adds a subscription plan. The frequency string is parsed up
// front so a typo never reaches the expansion path.
func (cc *CatalogController) CreatePlan(c *fiber.Ctx) error {
	var req catalogTypes.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = "daily"
	}
	if _, err := sequencer.ParsePolicy(frequency); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	plan := catalogModel.SubscriptionPlan{
		Name:         req.Name,
		DurationDays: req.DurationDays,
		MealsPerDay:  req.MealsPerDay,
		Frequency:    frequency,
		Price:        req.Price,
		IsActive:     true,
	}
	if err := cc.DB.Create(&plan).Error; err != nil {
		logger.Error("Failed to create plan", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	logger.Success(fmt.Sprintf("Plan %d (%s) created", plan.ID, plan.Name))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Plan created successfully",
		Data:    plan,
	})
}

// DeactivatePlan hides a plan from new checkouts. Hard deletion is never
// offered: historical booking items must keep resolving their plan.
func (cc *CatalogController) DeactivatePlan(c *fiber.Ctx) error {
	planID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid plan id",
			Data:    nil,
		})
	}

	var plan catalogModel.SubscriptionPlan
	if err := cc.DB.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Plan not found",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching plan", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if err := cc.DB.Model(&plan).Update("is_active", false).Error; err != nil {
		logger.Error("Failed to deactivate plan", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}
	plan.IsActive = false

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Plan deactivated",
		Data:    plan,
	})
}
