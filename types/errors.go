package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ValidationError means the request itself was malformed: missing cart,
// invalid amount, unknown enum value. Surfaced as 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced entity (address, plan, product, booking)
// does not exist. Surfaced as 404.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// TransactionError wraps a database failure mid-transaction. The detail is
// logged server-side; clients only see a generic 500.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// GatewayError means the payment provider returned a malformed or failing
// response. Surfaced distinctly (502) so the client can show a gateway
// message instead of a generic failure.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error during %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusFor maps an engine error to the HTTP status controllers return.
func HTTPStatusFor(err error) int {
	var ve *ValidationError
	var nfe *NotFoundError
	var ge *GatewayError

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &nfe):
		return fiber.StatusNotFound
	case errors.As(err, &ge):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ClientMessageFor returns the message safe to show the caller. Transaction
// detail is suppressed; validation and not-found reasons pass through.
func ClientMessageFor(err error) string {
	var ve *ValidationError
	var nfe *NotFoundError
	var ge *GatewayError

	switch {
	case errors.As(err, &ve):
		return ve.Reason
	case errors.As(err, &nfe):
		return nfe.Error()
	case errors.As(err, &ge):
		return "Payment gateway error"
	default:
		return "Internal server error"
	}
}
