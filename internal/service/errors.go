package service

import "fmt"

const (
	CodeAuthentication    = "AUTHENTICATION_ERROR"
	CodeBadRequest        = "BAD_REQUEST_ERROR"
	CodeNotFound          = "NOT_FOUND_ERROR"
	CodeInvalidVPA        = "INVALID_VPA"
	CodeInvalidCard       = "INVALID_CARD"
	CodeExpiredCard       = "EXPIRED_CARD"
	CodePaymentInProgress = "PAYMENT_IN_PROGRESS"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
)

// Error is a client-facing failure carrying the API error code and description.
type Error struct {
	Code        string
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func newError(code, description string) *Error {
	return &Error{Code: code, Description: description}
}

var (
	ErrInvalidCredentials = newError(CodeAuthentication, "Invalid API credentials")
	ErrOrderNotFound      = newError(CodeNotFound, "Order not found")
	ErrPaymentNotFound    = newError(CodeNotFound, "Payment not found")
	ErrInvalidVPA         = newError(CodeInvalidVPA, "Invalid VPA format")
	ErrInvalidCard        = newError(CodeInvalidCard, "Card validation failed")
	ErrExpiredCard        = newError(CodeExpiredCard, "Card expired")
	ErrInvalidMethod      = newError(CodeBadRequest, "Invalid payment method")
	ErrAmountTooSmall     = newError(CodeBadRequest, "amount must be at least 100")
	ErrInvalidCurrency    = newError(CodeBadRequest, "currency must be a 3 letter code")
	ErrPaymentInProgress  = newError(CodePaymentInProgress, "A payment for this order is already processing")
)
