package delivery

import (
	"errors"
	"fmt"
	"time"

	"homely-khana/logger"
	bookingModel "homely-khana/models/booking"
	deliveryModel "homely-khana/models/delivery"
	userModel "homely-khana/models/user"
	"homely-khana/services/cache"
	"homely-khana/types"
	deliveryTypes "homely-khana/types/delivery"
	"homely-khana/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// DeliveryController handles delivery-related HTTP requests
type DeliveryController struct {
	DB        *gorm.DB
	Logger    *logger.AsyncLogger
	Dashboard *cache.Dashboard
}

// NewDeliveryController creates a new delivery controller
func NewDeliveryController(db *gorm.DB, asyncLogger *logger.AsyncLogger, dashboard *cache.Dashboard) *DeliveryController {
	return &DeliveryController{
		DB:        db,
		Logger:    asyncLogger,
		Dashboard: dashboard,
	}
}

// ownedDelivery loads a delivery and verifies it belongs to the user.
func (dc *DeliveryController) ownedDelivery(deliveryID, userID uint) (*deliveryModel.Delivery, error) {
	var delivery deliveryModel.Delivery
	err := dc.DB.
		Joins("JOIN booking_items ON booking_items.id = deliveries.booking_item_id").
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("deliveries.id = ? AND bookings.user_id = ?", deliveryID, userID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// deliveryOwner resolves the customer a delivery belongs to, for cache
// invalidation after staff updates.
func (dc *DeliveryController) deliveryOwner(deliveryID uint) (uint, error) {
	var booking bookingModel.Booking
	err := dc.DB.
		Joins("JOIN booking_items ON booking_items.booking_id = bookings.id").
		Joins("JOIN deliveries ON deliveries.booking_item_id = booking_items.id").
		Where("deliveries.id = ?", deliveryID).
		First(&booking).Error
	if err != nil {
		return 0, err
	}
	return booking.UserID, nil
}

// NextDelivery returns the user's earliest upcoming delivery, served from
// the dashboard cache when warm.
func (dc *DeliveryController) NextDelivery(c *fiber.Ctx) error {
	userInfo, err := utils.CurrentUser(c, dc.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	cacheKey := cache.NextDeliveryKey(userInfo.ID)

	var cached deliveryModel.Delivery
	if hit, err := dc.Dashboard.Get(c.Context(), cacheKey, &cached); err == nil && hit {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Next delivery retrieved successfully",
			Data:    cached,
		})
	}

	today := now.BeginningOfDay()

	var delivery deliveryModel.Delivery
	err = dc.DB.
		Joins("JOIN booking_items ON booking_items.id = deliveries.booking_item_id").
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("bookings.user_id = ? AND deliveries.delivery_date >= ? AND deliveries.status IN ?",
			userInfo.ID, today, []deliveryModel.Status{deliveryModel.StatusScheduled, deliveryModel.StatusOutForDelivery}).
		Order("deliveries.delivery_date ASC, deliveries.slot ASC").
		First(&delivery).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "No upcoming deliveries",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching next delivery", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if err := dc.Dashboard.Set(c.Context(), cacheKey, delivery); err != nil {
		logger.Warning("Failed to cache next delivery: " + err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Next delivery retrieved successfully",
		Data:    delivery,
	})
}

// MyDeliveries lists the user's deliveries, upcoming first.
func (dc *DeliveryController) MyDeliveries(c *fiber.Ctx) error {
	userInfo, err := utils.CurrentUser(c, dc.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	query := dc.DB.
		Joins("JOIN booking_items ON booking_items.id = deliveries.booking_item_id").
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("bookings.user_id = ?", userInfo.ID)

	// ?from=YYYY-MM-DD limits the listing to deliveries on or after a date.
	if from := c.Query("from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "from must be YYYY-MM-DD",
				Data:    nil,
			})
		}
		query = query.Where("deliveries.delivery_date >= ?", fromDate)
	}

	var deliveries []deliveryModel.Delivery
	if err := query.Order("deliveries.delivery_date ASC, deliveries.slot ASC").Find(&deliveries).Error; err != nil {
		logger.Error("Database error while listing deliveries", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Deliveries retrieved successfully",
		Data:    deliveries,
	})
}

// Skip lets a customer skip one of their scheduled deliveries.
func (dc *DeliveryController) Skip(c *fiber.Ctx) error {
	var req deliveryTypes.SkipRequest
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

	userInfo, err := utils.CurrentUser(c, dc.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	delivery, err := dc.ownedDelivery(req.DeliveryID, userInfo.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Delivery not found",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching delivery", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	next, err := delivery.Status.Transition(deliveryModel.EventSkip)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	if err := dc.DB.Model(delivery).Update("status", next).Error; err != nil {
		logger.Error("Failed to skip delivery", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}
	delivery.Status = next

	dc.Dashboard.InvalidateUser(c.Context(), userInfo.ID)

	logger.Info(fmt.Sprintf("Delivery %d skipped by user %d", delivery.ID, userInfo.ID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Delivery skipped",
		Data:    delivery,
	})
}

// UpdateStatus is the staff-facing lifecycle endpoint: dispatch, deliver or
// cancel a delivery through the transition table.
func (dc *DeliveryController) UpdateStatus(c *fiber.Ctx) error {
	var req deliveryTypes.UpdateStatusRequest
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

	var delivery deliveryModel.Delivery
	if err := dc.DB.First(&delivery, req.DeliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Delivery not found",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching delivery", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	next, err := delivery.Status.Transition(deliveryModel.Event(req.Event))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	updates := map[string]interface{}{"status": next}
	if req.DriverNotes != "" {
		updates["driver_notes"] = req.DriverNotes
	}
	if err := dc.DB.Model(&delivery).Updates(updates).Error; err != nil {
		logger.Error("Failed to update delivery status", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}
	delivery.Status = next

	if ownerID, err := dc.deliveryOwner(delivery.ID); err == nil {
		dc.Dashboard.InvalidateUser(c.Context(), ownerID)
	}

	logger.Info(fmt.Sprintf("Delivery %d moved to %s", delivery.ID, next))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Delivery status updated",
		Data:    delivery,
	})
}

// Assign attaches a staff user to a delivery.
func (dc *DeliveryController) Assign(c *fiber.Ctx) error {
	var req deliveryTypes.AssignRequest
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

	var staff userModel.User
	if err := dc.DB.First(&staff, req.StaffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Staff user not found",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching staff user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	var delivery deliveryModel.Delivery
	if err := dc.DB.First(&delivery, req.DeliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Delivery not found",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching delivery", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if delivery.Status.IsTerminal() {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Cannot assign a %s delivery", delivery.Status),
			Data:    nil,
		})
	}

	if err := dc.DB.Model(&delivery).Update("assigned_to_id", staff.ID).Error; err != nil {
		logger.Error("Failed to assign delivery", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}
	delivery.AssignedToID = &staff.ID

	logger.Info(fmt.Sprintf("Delivery %d assigned to staff %d", delivery.ID, staff.ID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Delivery assigned",
		Data:    delivery,
	})
}
