package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"homely-khana/httpServices/cashfree"
	"homely-khana/logger"
	addressModel "homely-khana/models/address"
	bookingModel "homely-khana/models/booking"
	"homely-khana/models/catalog"
	deliveryModel "homely-khana/models/delivery"
	userModel "homely-khana/models/user"
	"homely-khana/services/cache"
	"homely-khana/services/sequencer"
	"homely-khana/types"
	bookingTypes "homely-khana/types/booking"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the fulfillment orchestrator. It owns the two paths that turn a
// checkout into delivery rows: the synchronous COD path and the
// webhook-driven online-payment path. All resource handles are injected so
// the engine carries no package-level state.
type Service struct {
	db        *gorm.DB
	dashboard *cache.Dashboard
	gateway   *cashfree.Client
}

func NewService(db *gorm.DB, dashboard *cache.Dashboard, gateway *cashfree.Client) *Service {
	return &Service{
		db:        db,
		dashboard: dashboard,
		gateway:   gateway,
	}
}

// CheckoutResult is what a successful checkout hands back to the controller.
type CheckoutResult struct {
	Booking          bookingModel.Booking
	PaymentSessionID string // set only for online payments
	AlreadyExists    bool   // true when the idempotency key matched an earlier booking
}

// WebhookOutcome reports what the payment webhook actually did.
type WebhookOutcome string

const (
	WebhookProcessed        WebhookOutcome = "processed"
	WebhookAlreadyProcessed WebhookOutcome = "already_processed"
)

// pricedItem is a cart line after catalog resolution, ready to persist.
type pricedItem struct {
	productID uint
	planID    *uint
	quantity  int
	unitPrice float64
	total     float64
	slot      string
	mealType  string
	startDate time.Time
}

// Checkout creates a booking for the user's cart.
//
// COD runs the full expansion inline: booking, items, address snapshot,
// per-item sequencing and materialization, then the pending→completed
// transition, all in one transaction, so any failure rolls the whole order
// back. Online payment only persists the pending booking and items, then
// asks the gateway for a payment session; deliveries are materialized later
// by CompletePayment when the webhook confirms the payment.
func (s *Service) Checkout(ctx context.Context, usr *userModel.User, req bookingTypes.CheckoutRequest) (*CheckoutResult, error) {
	if err := req.Validate(); err != nil {
		return nil, &types.ValidationError{Reason: err.Error()}
	}

	// A re-submitted idempotency key resolves to the original booking
	// instead of creating a duplicate.
	if req.IdempotencyKey != "" {
		var existing bookingModel.Booking
		err := s.db.WithContext(ctx).Preload("Items").
			Where("idempotency_key = ? AND user_id = ?", req.IdempotencyKey, usr.ID).
			First(&existing).Error
		if err == nil {
			logger.Info(fmt.Sprintf("Checkout with idempotency key %s already exists as booking %d", req.IdempotencyKey, existing.ID))
			return &CheckoutResult{Booking: existing, AlreadyExists: true}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.TransactionError{Op: "idempotency lookup", Err: err}
		}
	}

	// The address must exist and belong to the buyer before anything is
	// written; the frozen snapshot is taken later, inside the transaction.
	var addrCount int64
	if err := s.db.WithContext(ctx).Model(&addressModel.Address{}).
		Where("id = ? AND user_id = ?", req.AddressID, usr.ID).
		Count(&addrCount).Error; err != nil {
		return nil, &types.TransactionError{Op: "address lookup", Err: err}
	}
	if addrCount == 0 {
		return nil, &types.NotFoundError{Entity: "address", ID: req.AddressID}
	}

	items, total, err := s.priceCart(ctx, req)
	if err != nil {
		return nil, err
	}

	booking := bookingModel.Booking{
		UserID:        usr.ID,
		AddressID:     req.AddressID,
		TotalAmount:   total,
		PaymentMethod: bookingModel.PaymentMethod(req.PaymentMethod),
		PaymentStatus: bookingModel.PaymentStatusPending,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		booking.IdempotencyKey = &key
	}

	if booking.PaymentMethod == bookingModel.PaymentMethodCOD {
		return s.checkoutCOD(ctx, usr, booking, items)
	}
	return s.checkoutOnline(ctx, usr, booking, items, req.ReturnURL)
}

// checkoutCOD is Path A: fully synchronous, one transaction, user-visible
// failure on any error.
func (s *Service) checkoutCOD(ctx context.Context, usr *userModel.User, booking bookingModel.Booking, items []pricedItem) (*CheckoutResult, error) {
	today := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		rows, err := createItems(tx, booking.ID, items)
		if err != nil {
			return err
		}

		snapshot, err := ResolveAddressSnapshot(tx, booking.AddressID)
		if err != nil {
			return err
		}

		for i := range rows {
			if err := s.expandItem(tx, &rows[i], snapshot, today); err != nil {
				return err
			}
		}

		return transitionPayment(tx, &booking, bookingModel.PaymentEventSuccess, strconv.FormatUint(uint64(usr.ID), 10))
	})
	if err != nil {
		return nil, wrapEngineError("cod checkout", err)
	}

	// Only after commit; invalidating earlier risks repopulation with
	// pre-commit state.
	s.dashboard.InvalidateUser(ctx, usr.ID)

	logger.Success(fmt.Sprintf("COD booking %d fulfilled for user %d", booking.ID, usr.ID))
	return &CheckoutResult{Booking: booking}, nil
}

// checkoutOnline is the first half of Path B: persist the pending booking,
// register the order with the gateway and hand the payment session back.
// Deliveries are not touched here.
func (s *Service) checkoutOnline(ctx context.Context, usr *userModel.User, booking bookingModel.Booking, items []pricedItem, returnURL string) (*CheckoutResult, error) {
	orderID := uuid.NewString()
	booking.GatewayOrderID = &orderID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		_, err := createItems(tx, booking.ID, items)
		return err
	})
	if err != nil {
		return nil, wrapEngineError("online checkout", err)
	}

	email := ""
	if usr.Email != nil {
		email = *usr.Email
	}
	if returnURL == "" {
		returnURL = os.Getenv("PAYMENT_RETURN_URL")
	}

	resp, err := s.gateway.CreateOrder(cashfree.CreateOrderRequest{
		OrderAmount:   booking.TotalAmount,
		OrderCurrency: "INR",
		OrderID:       orderID,
		CustomerDetails: cashfree.CustomerDetails{
			CustomerID:    usr.Uuid,
			CustomerName:  usr.LegalName,
			CustomerEmail: email,
			CustomerPhone: usr.Phone,
		},
		OrderMeta: cashfree.OrderMeta{ReturnURL: returnURL},
	})
	if err != nil {
		// The booking stays on record; mark the attempt failed so the
		// customer can retry with a fresh checkout.
		s.failBooking(ctx, &booking, "gateway")
		return nil, &types.GatewayError{Op: "create order", Err: err}
	}

	logger.Success(fmt.Sprintf("Online booking %d awaiting payment (gateway order %s)", booking.ID, orderID))
	return &CheckoutResult{Booking: booking, PaymentSessionID: resp.PaymentSessionID}, nil
}

// CompletePayment is the second half of Path B, invoked by the payment
// webhook after the gateway reports SUCCESS. The guarded UPDATE on
// payment_status is the idempotency defense: gateways retry webhooks, and a
// second delivery of the same event must not materialize a second set of
// delivery rows.
func (s *Service) CompletePayment(ctx context.Context, gatewayOrderID string) (WebhookOutcome, error) {
	var userID uint
	outcome := WebhookProcessed

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking bookingModel.Booking
		if err := tx.Where("gateway_order_id = ?", gatewayOrderID).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Entity: "booking for gateway order", ID: gatewayOrderID}
			}
			return err
		}
		userID = booking.UserID

		if _, err := booking.PaymentStatus.Transition(bookingModel.PaymentEventSuccess); err != nil {
			// Not pending anymore: an earlier delivery of this event
			// already processed the booking.
			outcome = WebhookAlreadyProcessed
			return nil
		}

		// The WHERE clause stays even after the in-memory check: it is the
		// defense that holds when two webhook deliveries race.
		res := tx.Model(&bookingModel.Booking{}).
			Where("id = ? AND payment_status = ?", booking.ID, bookingModel.PaymentStatusPending).
			Update("payment_status", bookingModel.PaymentStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			outcome = WebhookAlreadyProcessed
			return nil
		}

		event := bookingModel.PaymentStatusEvent{
			BookingID:  booking.ID,
			FromStatus: bookingModel.PaymentStatusPending,
			ToStatus:   bookingModel.PaymentStatusCompleted,
			Event:      bookingModel.PaymentEventSuccess,
			CreatedBy:  "payment-webhook",
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		snapshot, err := ResolveAddressSnapshot(tx, booking.AddressID)
		if err != nil {
			return err
		}

		var items []bookingModel.BookingItem
		if err := tx.Where("booking_id = ?", booking.ID).Find(&items).Error; err != nil {
			return err
		}

		today := time.Now()
		for i := range items {
			if err := s.expandItem(tx, &items[i], snapshot, today); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapEngineError("payment webhook", err)
	}

	if outcome == WebhookProcessed {
		s.dashboard.InvalidateUser(ctx, userID)
		logger.Success(fmt.Sprintf("Deliveries materialized for gateway order %s", gatewayOrderID))
	}
	return outcome, nil
}

// expandItem runs the shared sequence-then-materialize routine for one
// booking item. Both payment paths use it, so COD and online expansions
// honor the same frequency policy.
func (s *Service) expandItem(tx *gorm.DB, item *bookingModel.BookingItem, snapshot deliveryModel.AddressSnapshot, today time.Time) error {
	durationDays := 1
	mealsPerDay := 1
	policy := sequencer.Daily()

	if item.PlanID != nil {
		spec, err := ResolvePlan(tx, *item.PlanID)
		if err != nil {
			return err
		}
		durationDays = spec.DurationDays
		mealsPerDay = spec.MealsPerDay

		policy, err = sequencer.ParsePolicy(spec.Frequency)
		if err != nil {
			// A malformed stored frequency must not sink a paid order.
			logger.Warning(fmt.Sprintf("Plan %d has unparseable frequency, falling back to daily: %v", *item.PlanID, err))
			policy = sequencer.Daily()
		}
	}

	dates, short := sequencer.Sequence(item.StartDate, today, durationDays, policy)
	if short {
		// Partial fulfillment is reportable, never fatal: a short window is
		// preferable to rejecting an already-paid order.
		logger.Warning(fmt.Sprintf("Partial fulfillment: booking item %d expanded to %d of %d dates (frequency %s)",
			item.ID, len(dates), durationDays, policy.Name()))
	}

	_, err := MaterializeDeliveries(tx, item, dates, mealsPerDay, snapshot)
	return err
}

// priceCart resolves every cart line against the catalog and computes the
// booking total. All failures here happen before anything is written.
func (s *Service) priceCart(ctx context.Context, req bookingTypes.CheckoutRequest) ([]pricedItem, float64, error) {
	items := make([]pricedItem, 0, len(req.Items))
	total := 0.0

	for i, line := range req.Items {
		var product catalog.Product
		if err := s.db.WithContext(ctx).First(&product, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, &types.NotFoundError{Entity: "product", ID: line.ProductID}
			}
			return nil, 0, &types.TransactionError{Op: "product lookup", Err: err}
		}
		if !product.IsActive {
			return nil, 0, types.NewValidationError("product %q is no longer available", product.Name)
		}

		unit := product.Price
		if line.PlanID != nil {
			var plan catalog.SubscriptionPlan
			if err := s.db.WithContext(ctx).First(&plan, *line.PlanID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, 0, &types.NotFoundError{Entity: "subscription plan", ID: *line.PlanID}
				}
				return nil, 0, &types.TransactionError{Op: "plan lookup", Err: err}
			}
			if !plan.IsActive {
				return nil, 0, types.NewValidationError("subscription plan %q is no longer available", plan.Name)
			}
			unit = plan.Price
		}

		startDate := time.Now()
		if line.StartDate != "" {
			parsed, err := time.Parse("2006-01-02", line.StartDate)
			if err != nil {
				return nil, 0, types.NewValidationError("items[%d].start_date must be YYYY-MM-DD", i)
			}
			startDate = parsed
		}

		slot := line.Slot
		if slot == "" {
			slot = string(deliveryModel.SlotLunch)
		}
		mealType := line.MealType
		if mealType == "" {
			mealType = "regular"
		}

		lineTotal := unit * float64(line.Quantity)
		items = append(items, pricedItem{
			productID: line.ProductID,
			planID:    line.PlanID,
			quantity:  line.Quantity,
			unitPrice: unit,
			total:     lineTotal,
			slot:      slot,
			mealType:  mealType,
			startDate: startDate,
		})
		total += lineTotal
	}

	return items, total, nil
}

// createItems persists the priced cart lines against a booking.
func createItems(tx *gorm.DB, bookingID uint, items []pricedItem) ([]bookingModel.BookingItem, error) {
	rows := make([]bookingModel.BookingItem, 0, len(items))
	for _, item := range items {
		row := bookingModel.BookingItem{
			BookingID: bookingID,
			ProductID: item.productID,
			PlanID:    item.planID,
			Quantity:  item.quantity,
			UnitPrice: item.unitPrice,
			Total:     item.total,
			Slot:      item.slot,
			MealType:  item.mealType,
			StartDate: item.startDate,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// transitionPayment applies a payment event through the central transition
// table, persists the new status and appends the ledger row.
func transitionPayment(tx *gorm.DB, booking *bookingModel.Booking, event bookingModel.PaymentEvent, actor string) error {
	next, err := booking.PaymentStatus.Transition(event)
	if err != nil {
		return err
	}

	if err := tx.Model(booking).Update("payment_status", next).Error; err != nil {
		return err
	}

	row := bookingModel.PaymentStatusEvent{
		BookingID:  booking.ID,
		FromStatus: booking.PaymentStatus,
		ToStatus:   next,
		Event:      event,
		CreatedBy:  actor,
	}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}

	booking.PaymentStatus = next
	return nil
}

// failBooking marks an online booking failed after a gateway error.
// Best-effort: the customer already sees the gateway error either way.
func (s *Service) failBooking(ctx context.Context, booking *bookingModel.Booking, actor string) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionPayment(tx, booking, bookingModel.PaymentEventFailure, actor)
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to mark booking %d as failed", booking.ID), err)
	}
}

// wrapEngineError keeps typed engine errors intact and wraps everything else
// as a TransactionError so controllers never leak raw database detail.
func wrapEngineError(op string, err error) error {
	var ve *types.ValidationError
	var nfe *types.NotFoundError
	var ge *types.GatewayError
	var te *types.TransactionError

	if errors.As(err, &ve) || errors.As(err, &nfe) || errors.As(err, &ge) || errors.As(err, &te) {
		return err
	}
	return &types.TransactionError{Op: op, Err: err}
}
