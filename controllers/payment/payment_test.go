package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homely-khana/logger"
	addressModel "homely-khana/models/address"
	bookingModel "homely-khana/models/booking"
	"homely-khana/models/catalog"
	deliveryModel "homely-khana/models/delivery"
	userModel "homely-khana/models/user"
	"homely-khana/services/cache"
	"homely-khana/services/fulfillment"
	"homely-khana/types"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type webhookFixture struct {
	app *fiber.App
	db  *gorm.DB
}

func setupWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&userModel.User{},
		&addressModel.Address{},
		&catalog.Product{},
		&catalog.SubscriptionPlan{},
		&bookingModel.Booking{},
		&bookingModel.BookingItem{},
		&bookingModel.PaymentStatusEvent{},
		&deliveryModel.Delivery{},
	)
	require.NoError(t, err)

	usr := userModel.User{
		Uuid:      "u-webhook",
		Username:  "rahul",
		LegalName: "Rahul Verma",
		Phone:     "9876501234",
	}
	require.NoError(t, db.Create(&usr).Error)

	addr := addressModel.Address{
		UserID:        usr.ID,
		Label:         "home",
		RecipientName: "Rahul Verma",
		Phone:         "9876501234",
		Line1:         "7 Brigade Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pincode:       "560025",
	}
	require.NoError(t, db.Create(&addr).Error)

	product := catalog.Product{Name: "Paneer Bowl", Price: 150, IsActive: true}
	require.NoError(t, db.Create(&product).Error)

	plan := catalog.SubscriptionPlan{
		Name:         "Weekly Lunch",
		DurationDays: 7,
		MealsPerDay:  1,
		Frequency:    "daily",
		Price:        900,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&plan).Error)

	orderID := "gw-hook-1"
	booking := bookingModel.Booking{
		UserID:         usr.ID,
		AddressID:      addr.ID,
		TotalAmount:    900,
		PaymentMethod:  bookingModel.PaymentMethodOnline,
		PaymentStatus:  bookingModel.PaymentStatusPending,
		GatewayOrderID: &orderID,
	}
	require.NoError(t, db.Create(&booking).Error)

	item := bookingModel.BookingItem{
		BookingID: booking.ID,
		ProductID: product.ID,
		PlanID:    &plan.ID,
		Quantity:  1,
		UnitPrice: 900,
		Total:     900,
		Slot:      "lunch",
		MealType:  "regular",
		StartDate: time.Now(),
	}
	require.NoError(t, db.Create(&item).Error)

	svc := fulfillment.NewService(db, cache.NewDashboard(nil, 0), nil)
	controller := NewPaymentController(db, logger.NewAsyncLogger(db), svc)

	app := fiber.New()
	app.Post("/api/payment/webhook", controller.Webhook)

	return &webhookFixture{app: app, db: db}
}

func (f *webhookFixture) post(t *testing.T, body string) (*http.Response, types.ApiResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed types.ApiResponse
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func webhookBody(orderID, paymentStatus string) string {
	return fmt.Sprintf(`{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"data": {
			"payment": {"payment_status": %q},
			"order": {"order_id": %q}
		}
	}`, paymentStatus, orderID)
}

func TestWebhookSuccessMaterializes(t *testing.T) {
	f := setupWebhookFixture(t)

	resp, parsed := f.post(t, webhookBody("gw-hook-1", "SUCCESS"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", parsed.Message)

	var deliveries int64
	f.db.Model(&deliveryModel.Delivery{}).Count(&deliveries)
	assert.EqualValues(t, 7, deliveries)
}

func TestWebhookNonSuccessIsAcknowledgedNoOp(t *testing.T) {
	f := setupWebhookFixture(t)

	resp, parsed := f.post(t, webhookBody("gw-hook-1", "FAILED"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK (Payment Not Success)", parsed.Message)

	// Nothing may change: booking pending, no deliveries.
	var b bookingModel.Booking
	require.NoError(t, f.db.Where("gateway_order_id = ?", "gw-hook-1").First(&b).Error)
	assert.Equal(t, bookingModel.PaymentStatusPending, b.PaymentStatus)

	var deliveries int64
	f.db.Model(&deliveryModel.Delivery{}).Count(&deliveries)
	assert.EqualValues(t, 0, deliveries)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	f := setupWebhookFixture(t)

	resp, parsed := f.post(t, webhookBody("gw-hook-1", "SUCCESS"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", parsed.Message)

	resp, parsed = f.post(t, webhookBody("gw-hook-1", "SUCCESS"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK (Already Processed)", parsed.Message)

	var deliveries int64
	f.db.Model(&deliveryModel.Delivery{}).Count(&deliveries)
	assert.EqualValues(t, 7, deliveries, "retry must not duplicate deliveries")
}

func TestWebhookUnknownOrderReturns404(t *testing.T) {
	f := setupWebhookFixture(t)

	resp, _ := f.post(t, webhookBody("gw-nope", "SUCCESS"))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebhookMalformedPayloadReturns400(t *testing.T) {
	f := setupWebhookFixture(t)

	tests := []string{
		`{"data": {"payment": {"payment_status": "SUCCESS"}, "order": {}}}`,
		`{"data": {"payment": {}, "order": {"order_id": "gw-hook-1"}}}`,
		`{}`,
	}
	for _, body := range tests {
		resp, _ := f.post(t, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)
	}
}
