package payment

import (
	"errors"
	"fmt"

	"homely-khana/httpServices/cashfree"
	"homely-khana/logger"
	"homely-khana/services/fulfillment"
	"homely-khana/types"
	"homely-khana/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PaymentController handles payment gateway callbacks
type PaymentController struct {
	DB          *gorm.DB
	Logger      *logger.AsyncLogger
	Fulfillment *fulfillment.Service
}

// NewPaymentController creates a new payment controller
func NewPaymentController(db *gorm.DB, asyncLogger *logger.AsyncLogger, svc *fulfillment.Service) *PaymentController {
	return &PaymentController{
		DB:          db,
		Logger:      asyncLogger,
		Fulfillment: svc,
	}
}

// respond sends the response and records the exchange in the request log.
// Webhook traffic is the audit trail for payment disputes, so every response
// goes through here.
func (pc *PaymentController) respond(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

// Webhook receives payment notifications from the gateway. The gateway
// retries until it sees a 2xx, so every recognized situation answers 200;
// non-2xx is reserved for payloads we could not act on at all.
func (pc *PaymentController) Webhook(c *fiber.Ctx) error {
	var payload cashfree.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		logger.Error("Failed to parse webhook payload", err)
		return pc.respond(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid webhook payload",
			Data:    nil,
		})
	}

	if err := payload.Validate(); err != nil {
		logger.Error("Webhook payload failed validation", err)
		return pc.respond(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid webhook payload",
			Data:    nil,
		})
	}

	orderID := payload.Data.Order.OrderID

	// Failure and pending notifications are acknowledged without touching
	// the booking; only SUCCESS triggers fulfillment.
	if payload.Data.Payment.PaymentStatus != cashfree.PaymentStatusSuccess {
		logger.Info(fmt.Sprintf("Webhook for order %s reported status %s, ignoring",
			orderID, payload.Data.Payment.PaymentStatus))
		return pc.respond(c, fiber.StatusOK, types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "OK (Payment Not Success)",
			Data:    nil,
		})
	}

	outcome, err := pc.Fulfillment.CompletePayment(c.Context(), orderID)
	if err != nil {
		var nfe *types.NotFoundError
		if errors.As(err, &nfe) {
			logger.Error("Webhook for unknown gateway order", err)
			return pc.respond(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Unknown order",
				Data:    nil,
			})
		}
		logger.Error("Failed to process payment webhook", err)
		return pc.respond(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to process webhook",
			Data:    nil,
		})
	}

	if outcome == fulfillment.WebhookAlreadyProcessed {
		return pc.respond(c, fiber.StatusOK, types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "OK (Already Processed)",
			Data:    nil,
		})
	}

	return pc.respond(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    nil,
	})
}
