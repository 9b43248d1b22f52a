package address

import (
	"errors"
	"fmt"

	"homely-khana/logger"
	addressModel "homely-khana/models/address"
	"homely-khana/types"
	addressTypes "homely-khana/types/address"
	"homely-khana/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AddressController handles saved delivery addresses
type AddressController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewAddressController creates a new address controller
func NewAddressController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *AddressController {
	return &AddressController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Store saves a new delivery address for the authenticated user.
func (ac *AddressController) Store(c *fiber.Ctx) error {
	var req addressTypes.CreateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse address request body", err)
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

	userInfo, err := utils.CurrentUser(c, ac.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	label := req.Label
	if label == "" {
		label = "home"
	}

	addr := addressModel.Address{
		UserID:        userInfo.ID,
		Label:         label,
		RecipientName: req.RecipientName,
		Phone:         req.Phone,
		Line1:         req.Line1,
		Line2:         req.Line2,
		Landmark:      req.Landmark,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
	}
	if err := ac.DB.Create(&addr).Error; err != nil {
		logger.Error("Failed to create address", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
			Data:    nil,
		})
	}

	logger.Success(fmt.Sprintf("Address %d created for user %d", addr.ID, userInfo.ID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Address created successfully",
		Data:    addr,
	})
}

// Index lists the authenticated user's saved addresses.
func (ac *AddressController) Index(c *fiber.Ctx) error {
	userInfo, err := utils.CurrentUser(c, ac.DB)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	var addresses []addressModel.Address
	if err := ac.DB.Where("user_id = ?", userInfo.ID).Order("created_at DESC").Find(&addresses).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Database error while listing addresses", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Database error",
				Data:    nil,
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Addresses retrieved successfully",
		Data:    addresses,
	})
}
