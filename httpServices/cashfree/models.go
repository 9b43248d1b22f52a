package cashfree

import (
	"fmt"
)

// PaymentStatusSuccess is the only gateway payment status that triggers
// fulfillment; anything else is acknowledged and ignored.
const PaymentStatusSuccess = "SUCCESS"

// CustomerDetails identifies the paying customer to the gateway.
type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// OrderMeta carries the post-payment redirect target.
type OrderMeta struct {
	ReturnURL string `json:"return_url"`
}

// CreateOrderRequest is the order-creation payload sent to the gateway.
type CreateOrderRequest struct {
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	OrderID         string          `json:"order_id"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	OrderMeta       OrderMeta       `json:"order_meta"`
}

// CreateOrderResponse is the gateway's reply; the session id is what the
// frontend needs to open the payment page.
type CreateOrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
}

// WebhookPayload is the notification the gateway posts after a payment
// attempt. The shape is validated at the boundary before any field access.
type WebhookPayload struct {
	Type string      `json:"type,omitempty"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	Payment WebhookPayment `json:"payment"`
	Order   WebhookOrder   `json:"order"`
}

type WebhookPayment struct {
	PaymentStatus string `json:"payment_status"`
}

type WebhookOrder struct {
	OrderID string `json:"order_id"`
}

// Validate rejects structurally incomplete notifications up front, so no
// handler ever dereferences a missing field.
func (p WebhookPayload) Validate() error {
	if p.Data.Order.OrderID == "" {
		return fmt.Errorf("webhook payload missing data.order.order_id")
	}
	if p.Data.Payment.PaymentStatus == "" {
		return fmt.Errorf("webhook payload missing data.payment.payment_status")
	}
	return nil
}
