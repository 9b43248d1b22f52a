package booking

import (
	"strconv"

	"homely-khana/logger"
	bookingModel "homely-khana/models/booking"
	"homely-khana/services/cache"
	"homely-khana/services/fulfillment"
	"homely-khana/types"
	bookingTypes "homely-khana/types/booking"
	"homely-khana/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles booking-related HTTP requests
type BookingController struct {
	DB          *gorm.DB
	Logger      *logger.AsyncLogger
	Fulfillment *fulfillment.Service
	Dashboard   *cache.Dashboard
}

// NewBookingController creates a new booking controller
func NewBookingController(db *gorm.DB, asyncLogger *logger.AsyncLogger, svc *fulfillment.Service, dashboard *cache.Dashboard) *BookingController {
	return &BookingController{
		DB:          db,
		Logger:      asyncLogger,
		Fulfillment: svc,
		Dashboard:   dashboard,
	}
}

// respond sends the response and records the exchange in the request log.
func (bc *BookingController) respond(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	bc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

// Checkout creates a booking from the user's cart. COD bookings come back
// fully fulfilled; online bookings come back with a payment session id.
func (bc *BookingController) Checkout(c *fiber.Ctx) error {
	var req bookingTypes.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse checkout request body", err)
		return bc.respond(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	userInfo, err := utils.CurrentUser(c, bc.DB)
	if err != nil {
		logger.Error("Error resolving user from token", err)
		return bc.respond(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	result, err := bc.Fulfillment.Checkout(c.Context(), userInfo, req)
	if err != nil {
		logger.Error("Checkout failed", err)
		status := types.HTTPStatusFor(err)
		return bc.respond(c, status, types.ApiResponse{
			Status:  status,
			Message: types.ClientMessageFor(err),
			Data:    nil,
		})
	}

	if result.AlreadyExists {
		return bc.respond(c, fiber.StatusOK, types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Booking already exists",
			Data:    result.Booking,
		})
	}

	data := fiber.Map{"booking": result.Booking}
	message := "Booking created and deliveries scheduled"
	if result.PaymentSessionID != "" {
		data["payment_session_id"] = result.PaymentSessionID
		message = "Booking created, awaiting payment"
	}

	return bc.respond(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Show returns one booking with its items. Customers only see their own.
func (bc *BookingController) Show(c *fiber.Ctx) error {
	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
			Data:    nil,
		})
	}

	userInfo, err := utils.CurrentUser(c, bc.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	var booking bookingModel.Booking
	query := bc.DB.Preload("Items").Preload("Items.Product").Preload("Items.Plan").Preload("AddressInfo")
	if err := query.Where("id = ? AND user_id = ?", bookingID, userInfo.ID).First(&booking).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
				Data:    nil,
			})
		}
		logger.Error("Database error while fetching booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking retrieved successfully",
		Data:    booking,
	})
}

// MyBookings lists the authenticated user's bookings, newest first.
func (bc *BookingController) MyBookings(c *fiber.Ctx) error {
	userInfo, err := utils.CurrentUser(c, bc.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	var bookings []bookingModel.Booking
	err = bc.DB.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userInfo.ID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		logger.Error("Database error while listing bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Bookings retrieved successfully",
		Data:    bookings,
	})
}

// MySubscriptions lists the user's active subscription items, served from
// the dashboard cache when warm.
func (bc *BookingController) MySubscriptions(c *fiber.Ctx) error {
	userInfo, err := utils.CurrentUser(c, bc.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	cacheKey := cache.SubscriptionsKey(userInfo.ID)

	var cached []bookingModel.BookingItem
	if hit, err := bc.Dashboard.Get(c.Context(), cacheKey, &cached); err == nil && hit {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Subscriptions retrieved successfully",
			Data:    cached,
		})
	}

	var items []bookingModel.BookingItem
	err = bc.DB.Preload("Product").Preload("Plan").
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("bookings.user_id = ? AND bookings.payment_status = ? AND booking_items.plan_id IS NOT NULL",
			userInfo.ID, bookingModel.PaymentStatusCompleted).
		Order("booking_items.created_at DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Database error while listing subscriptions", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	if err := bc.Dashboard.Set(c.Context(), cacheKey, items); err != nil {
		logger.Warning("Failed to cache subscriptions: " + err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Subscriptions retrieved successfully",
		Data:    items,
	})
}
