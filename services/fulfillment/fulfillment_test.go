package fulfillment

import (
	"context"
	"fmt"
	"testing"
	"time"

	addressModel "homely-khana/models/address"
	bookingModel "homely-khana/models/booking"
	"homely-khana/models/catalog"
	deliveryModel "homely-khana/models/delivery"
	userModel "homely-khana/models/user"
	"homely-khana/services/cache"
	"homely-khana/types"
	bookingTypes "homely-khana/types/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	user    userModel.User
	address addressModel.Address
	product catalog.Product
	plan    catalog.SubscriptionPlan
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	f := &fixture{db: db}

	f.user = userModel.User{
		Uuid:      "u-" + t.Name(),
		Username:  "priya-" + t.Name(),
		LegalName: "Priya Sharma",
		Phone:     "98765" + fmt.Sprintf("%05d", len(t.Name())),
	}
	require.NoError(t, db.Create(&f.user).Error)

	f.address = addressModel.Address{
		UserID:        f.user.ID,
		Label:         "home",
		RecipientName: "Priya Sharma",
		Phone:         "9876543210",
		Line1:         "14 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pincode:       "560001",
	}
	require.NoError(t, db.Create(&f.address).Error)

	f.product = catalog.Product{
		Name:     "Veg Thali",
		Price:    120,
		IsVeg:    true,
		IsActive: true,
	}
	require.NoError(t, db.Create(&f.product).Error)

	f.plan = catalog.SubscriptionPlan{
		Name:         "Weekly Lunch",
		DurationDays: 7,
		MealsPerDay:  1,
		Frequency:    "daily",
		Price:        800,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&f.plan).Error)

	// Nil redis client and nil gateway: COD and webhook paths never touch
	// the gateway, and the dashboard degrades to a no-op.
	f.svc = NewService(db, cache.NewDashboard(nil, 0), nil)
	return f
}

func (f *fixture) subscriptionCheckout(method string) bookingTypes.CheckoutRequest {
	return bookingTypes.CheckoutRequest{
		AddressID:     f.address.ID,
		PaymentMethod: method,
		Items: []bookingTypes.CheckoutItemRequest{{
			ProductID: f.product.ID,
			PlanID:    &f.plan.ID,
			Quantity:  1,
			Slot:      "lunch",
		}},
	}
}

func (f *fixture) countDeliveries(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&deliveryModel.Delivery{}).Count(&n).Error)
	return n
}

// seedPendingOnlineBooking inserts what checkoutOnline would have persisted
// before the gateway redirect, so webhook behavior can be tested in
// isolation.
func (f *fixture) seedPendingOnlineBooking(t *testing.T, orderID string, planID *uint) bookingModel.Booking {
	t.Helper()
	b := bookingModel.Booking{
		UserID:         f.user.ID,
		AddressID:      f.address.ID,
		TotalAmount:    800,
		PaymentMethod:  bookingModel.PaymentMethodOnline,
		PaymentStatus:  bookingModel.PaymentStatusPending,
		GatewayOrderID: &orderID,
	}
	require.NoError(t, f.db.Create(&b).Error)

	item := bookingModel.BookingItem{
		BookingID: b.ID,
		ProductID: f.product.ID,
		PlanID:    planID,
		Quantity:  1,
		UnitPrice: 800,
		Total:     800,
		Slot:      "lunch",
		MealType:  "regular",
		StartDate: time.Now(),
	}
	require.NoError(t, f.db.Create(&item).Error)
	return b
}

func TestCODCheckoutMaterializesDeliveries(t *testing.T) {
	f := setupFixture(t)

	result, err := f.svc.Checkout(context.Background(), &f.user, f.subscriptionCheckout("cod"))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, bookingModel.PaymentStatusCompleted, result.Booking.PaymentStatus)
	assert.Empty(t, result.PaymentSessionID)

	// 7-day daily plan, one meal a day.
	assert.EqualValues(t, 7, f.countDeliveries(t))

	var first deliveryModel.Delivery
	require.NoError(t, f.db.Order("delivery_date ASC").First(&first).Error)
	assert.Equal(t, deliveryModel.StatusScheduled, first.Status)
	assert.Equal(t, f.address.Pincode, first.AddressSnapshot.Pincode)
	assert.True(t, first.DeliveryDate.After(time.Now()), "first delivery must be tomorrow or later")

	var events []bookingModel.PaymentStatusEvent
	require.NoError(t, f.db.Where("booking_id = ?", result.Booking.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, bookingModel.PaymentStatusPending, events[0].FromStatus)
	assert.Equal(t, bookingModel.PaymentStatusCompleted, events[0].ToStatus)
}

func TestCODCheckoutTwoMealsPerDayFansOutSlots(t *testing.T) {
	f := setupFixture(t)

	twoMeals := catalog.SubscriptionPlan{
		Name:         "Full Board",
		DurationDays: 3,
		MealsPerDay:  2,
		Frequency:    "daily",
		Price:        1500,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&twoMeals).Error)

	req := f.subscriptionCheckout("cod")
	req.Items[0].PlanID = &twoMeals.ID

	_, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.NoError(t, err)

	assert.EqualValues(t, 6, f.countDeliveries(t), "3 days x 2 slots")

	var lunches, dinners int64
	f.db.Model(&deliveryModel.Delivery{}).Where("slot = ?", deliveryModel.SlotLunch).Count(&lunches)
	f.db.Model(&deliveryModel.Delivery{}).Where("slot = ?", deliveryModel.SlotDinner).Count(&dinners)
	assert.EqualValues(t, 3, lunches)
	assert.EqualValues(t, 3, dinners)
}

func TestCheckoutOneOffItemGetsSingleDelivery(t *testing.T) {
	f := setupFixture(t)

	req := f.subscriptionCheckout("cod")
	req.Items[0].PlanID = nil

	result, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.NoError(t, err)

	assert.Equal(t, bookingModel.PaymentStatusCompleted, result.Booking.PaymentStatus)
	assert.EqualValues(t, 1, f.countDeliveries(t))
}

func TestCheckoutRejectsUnknownAddress(t *testing.T) {
	f := setupFixture(t)

	req := f.subscriptionCheckout("cod")
	req.AddressID = 9999

	_, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.Error(t, err)

	var nfe *types.NotFoundError
	assert.ErrorAs(t, err, &nfe)
	assert.EqualValues(t, 0, f.countDeliveries(t))
}

func TestCheckoutRejectsForeignAddress(t *testing.T) {
	f := setupFixture(t)

	other := userModel.User{
		Uuid:      "u-other",
		Username:  "other",
		LegalName: "Someone Else",
		Phone:     "9000000001",
	}
	require.NoError(t, f.db.Create(&other).Error)

	theirs := addressModel.Address{
		UserID:        other.ID,
		Label:         "home",
		RecipientName: "Someone Else",
		Phone:         "9000000001",
		Line1:         "1 Other Street",
		City:          "Pune",
		State:         "Maharashtra",
		Pincode:       "411001",
	}
	require.NoError(t, f.db.Create(&theirs).Error)

	req := f.subscriptionCheckout("cod")
	req.AddressID = theirs.ID

	_, err := f.svc.Checkout(context.Background(), &f.user, req)

	var nfe *types.NotFoundError
	assert.ErrorAs(t, err, &nfe, "another user's address must look nonexistent")
}

func TestCheckoutRejectsInactivePlan(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.db.Model(&f.plan).Update("is_active", false).Error)

	_, err := f.svc.Checkout(context.Background(), &f.user, f.subscriptionCheckout("cod"))
	require.Error(t, err)

	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCheckoutValidationFailure(t *testing.T) {
	f := setupFixture(t)

	req := f.subscriptionCheckout("cod")
	req.PaymentMethod = "upi"

	_, err := f.svc.Checkout(context.Background(), &f.user, req)

	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCheckoutRejectsMultiQuantitySubscription(t *testing.T) {
	f := setupFixture(t)

	req := f.subscriptionCheckout("cod")
	req.Items[0].Quantity = 2

	_, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.Error(t, err)

	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.EqualValues(t, 0, f.countDeliveries(t))
}

func TestCheckoutIdempotencyKeyReturnsExistingBooking(t *testing.T) {
	f := setupFixture(t)

	req := f.subscriptionCheckout("cod")
	req.IdempotencyKey = "order-once"

	first, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.NoError(t, err)
	assert.False(t, first.AlreadyExists)

	countAfterFirst := f.countDeliveries(t)

	second, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.NoError(t, err)
	assert.True(t, second.AlreadyExists)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)
	assert.Equal(t, countAfterFirst, f.countDeliveries(t), "retry must not create more deliveries")
}

func TestCODCheckoutRollsBackOnMaterializeFailure(t *testing.T) {
	f := setupFixture(t)

	// Dropping the deliveries table makes the materializer's insert fail
	// after the booking and its items have been written in the same
	// transaction.
	require.NoError(t, f.db.Migrator().DropTable(&deliveryModel.Delivery{}))

	_, err := f.svc.Checkout(context.Background(), &f.user, f.subscriptionCheckout("cod"))
	require.Error(t, err)

	var te *types.TransactionError
	assert.ErrorAs(t, err, &te)

	// Nothing from the failed checkout may survive the rollback.
	var bookings, items, events int64
	f.db.Model(&bookingModel.Booking{}).Count(&bookings)
	f.db.Model(&bookingModel.BookingItem{}).Count(&items)
	f.db.Model(&bookingModel.PaymentStatusEvent{}).Count(&events)
	assert.EqualValues(t, 0, bookings)
	assert.EqualValues(t, 0, items)
	assert.EqualValues(t, 0, events)
}

func TestWebhookMaterializesOnce(t *testing.T) {
	f := setupFixture(t)
	f.seedPendingOnlineBooking(t, "gw-1", &f.plan.ID)

	outcome, err := f.svc.CompletePayment(context.Background(), "gw-1")
	require.NoError(t, err)
	assert.Equal(t, WebhookProcessed, outcome)
	assert.EqualValues(t, 7, f.countDeliveries(t))

	var b bookingModel.Booking
	require.NoError(t, f.db.Where("gateway_order_id = ?", "gw-1").First(&b).Error)
	assert.Equal(t, bookingModel.PaymentStatusCompleted, b.PaymentStatus)

	// The gateway retries webhooks; the second delivery of the same event
	// must be a no-op.
	outcome, err = f.svc.CompletePayment(context.Background(), "gw-1")
	require.NoError(t, err)
	assert.Equal(t, WebhookAlreadyProcessed, outcome)
	assert.EqualValues(t, 7, f.countDeliveries(t), "retry must not duplicate deliveries")

	var events int64
	f.db.Model(&bookingModel.PaymentStatusEvent{}).Where("booking_id = ?", b.ID).Count(&events)
	assert.EqualValues(t, 1, events)
}

func TestWebhookUnknownOrder(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.CompletePayment(context.Background(), "gw-missing")
	require.Error(t, err)

	var nfe *types.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestWebhookRollsBackOnExpansionFailure(t *testing.T) {
	f := setupFixture(t)

	// Item references a plan id that does not exist, so expansion fails
	// inside the transaction.
	missingPlan := uint(4242)
	f.seedPendingOnlineBooking(t, "gw-broken", &missingPlan)

	_, err := f.svc.CompletePayment(context.Background(), "gw-broken")
	require.Error(t, err)

	// Everything the webhook wrote must be gone: status still pending so a
	// retry can succeed after the data is repaired, no deliveries, no ledger
	// rows.
	var b bookingModel.Booking
	require.NoError(t, f.db.Where("gateway_order_id = ?", "gw-broken").First(&b).Error)
	assert.Equal(t, bookingModel.PaymentStatusPending, b.PaymentStatus)
	assert.EqualValues(t, 0, f.countDeliveries(t))

	var events int64
	f.db.Model(&bookingModel.PaymentStatusEvent{}).Count(&events)
	assert.EqualValues(t, 0, events)
}

func TestSnapshotSurvivesAddressEdit(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Checkout(context.Background(), &f.user, f.subscriptionCheckout("cod"))
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&f.address).Updates(map[string]interface{}{
		"line1":   "99 New Colony",
		"pincode": "560099",
	}).Error)

	var deliveries []deliveryModel.Delivery
	require.NoError(t, f.db.Find(&deliveries).Error)
	require.NotEmpty(t, deliveries)
	for _, d := range deliveries {
		assert.Equal(t, "14 MG Road", d.AddressSnapshot.Line1)
		assert.Equal(t, "560001", d.AddressSnapshot.Pincode)
	}
}

func TestWeekdaysPlanSkipsWeekends(t *testing.T) {
	f := setupFixture(t)

	weekdays := catalog.SubscriptionPlan{
		Name:         "Office Lunch",
		DurationDays: 10,
		MealsPerDay:  1,
		Frequency:    "weekdays",
		Price:        900,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&weekdays).Error)

	req := f.subscriptionCheckout("cod")
	req.Items[0].PlanID = &weekdays.ID

	_, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.NoError(t, err)

	var deliveries []deliveryModel.Delivery
	require.NoError(t, f.db.Find(&deliveries).Error)
	// Any 10 consecutive days contain between 2 and 4 weekend days, so the
	// plan window yields 6 to 8 deliveries, never the full 10.
	assert.GreaterOrEqual(t, len(deliveries), 6)
	assert.LessOrEqual(t, len(deliveries), 8)
	for _, d := range deliveries {
		assert.NotEqual(t, time.Saturday, d.DeliveryDate.Weekday())
		assert.NotEqual(t, time.Sunday, d.DeliveryDate.Weekday())
	}
}

func TestSparseFrequencyPlanShortensSchedule(t *testing.T) {
	f := setupFixture(t)

	threeDays := catalog.SubscriptionPlan{
		Name:         "MWF Tiffin",
		DurationDays: 7,
		MealsPerDay:  1,
		Frequency:    "custom:mon,wed,fri",
		Price:        400,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&threeDays).Error)

	req := f.subscriptionCheckout("cod")
	req.Items[0].PlanID = &threeDays.ID

	result, err := f.svc.Checkout(context.Background(), &f.user, req)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.PaymentStatusCompleted, result.Booking.PaymentStatus)

	// A 7-day window holds each weekday exactly once: three delivery days,
	// all on the plan's weekdays.
	var deliveries []deliveryModel.Delivery
	require.NoError(t, f.db.Find(&deliveries).Error)
	require.Len(t, deliveries, 3)
	for _, d := range deliveries {
		wd := d.DeliveryDate.Weekday()
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, wd)
		assert.Equal(t, deliveryModel.StatusScheduled, d.Status)
	}
}

func TestResolvePlanIgnoresDeactivation(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.db.Model(&f.plan).Update("is_active", false).Error)

	spec, err := ResolvePlan(f.db, f.plan.ID)
	require.NoError(t, err, "historical items must still resolve a deactivated plan")
	assert.Equal(t, 7, spec.DurationDays)
}

func TestResolveAddressSnapshotMissing(t *testing.T) {
	f := setupFixture(t)

	_, err := ResolveAddressSnapshot(f.db, 12345)
	require.Error(t, err)

	var nfe *types.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}
