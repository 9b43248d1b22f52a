package routes

import (
	"os"
	"time"

	"homely-khana/constants"
	addressController "homely-khana/controllers/address"
	bookingController "homely-khana/controllers/booking"
	catalogController "homely-khana/controllers/catalog"
	deliveryController "homely-khana/controllers/delivery"
	paymentController "homely-khana/controllers/payment"
	"homely-khana/httpServices/cashfree"
	"homely-khana/logger"
	"homely-khana/middleware"
	"homely-khana/services/cache"
	"homely-khana/services/fulfillment"
	"homely-khana/types"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, redisClient *redis.Client) {
	gateway := cashfree.NewClient(
		os.Getenv("CASHFREE_BASE_URL"),
		os.Getenv("CASHFREE_APP_ID"),
		os.Getenv("CASHFREE_SECRET_KEY"),
	)
	dashboard := cache.NewDashboard(redisClient, 15*time.Minute)
	asyncLogger := logger.NewAsyncLogger(db)
	engine := fulfillment.NewService(db, dashboard, gateway)

	addresses := addressController.NewAddressController(db, asyncLogger)
	bookings := bookingController.NewBookingController(db, asyncLogger, engine, dashboard)
	payments := paymentController.NewPaymentController(db, asyncLogger, engine)
	deliveries := deliveryController.NewDeliveryController(db, asyncLogger, dashboard)
	catalog := catalogController.NewCatalogController(db, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "homely-khana fulfillment service",
			Data:    nil,
		})
	})

	api := app.Group("/api")

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api.Get("/products", catalog.ListProducts)
	api.Get("/plans", catalog.ListPlans)

	// Gateway-facing; the gateway authenticates via its own signature scheme,
	// not a user session.
	api.Post("/payment/webhook", payments.Webhook)

	/*=============================================================================
	| Customer Routes
	===============================================================================*/
	addressGroup := api.Group("/address").Use(middleware.RequireAuthentication())
	addressGroup.Post("/", addresses.Store)
	addressGroup.Get("/", addresses.Index)

	bookingGroup := api.Group("/booking").Use(middleware.RequireAuthentication())
	bookingGroup.Post("/checkout", bookings.Checkout)
	bookingGroup.Get("/my", bookings.MyBookings)
	bookingGroup.Get("/subscriptions", bookings.MySubscriptions)
	bookingGroup.Get("/:id", bookings.Show)

	deliveryGroup := api.Group("/delivery")
	deliveryGroup.Get("/next", middleware.RequireAuthentication(), deliveries.NextDelivery)
	deliveryGroup.Get("/my", middleware.RequireAuthentication(), deliveries.MyDeliveries)
	deliveryGroup.Post("/skip", middleware.RequireAuthentication(), deliveries.Skip)

	/*=============================================================================
	| Staff Routes
	===============================================================================*/
	deliveryGroup.Post("/status", middleware.RequirePermissions(
		constants.StaffPermissions...,
	), deliveries.UpdateStatus)

	deliveryGroup.Post("/assign", middleware.RequirePermissions(
		constants.PermAdminFull,
		constants.PermKitchenFull,
	), deliveries.Assign)

	api.Post("/products", middleware.RequirePermissions(
		constants.PermAdminFull,
	), catalog.CreateProduct)

	api.Post("/products/:id/deactivate", middleware.RequirePermissions(
		constants.PermAdminFull,
	), catalog.DeactivateProduct)

	api.Post("/plans", middleware.RequirePermissions(
		constants.PermAdminFull,
	), catalog.CreatePlan)

	api.Post("/plans/:id/deactivate", middleware.RequirePermissions(
		constants.PermAdminFull,
	), catalog.DeactivatePlan)
}
