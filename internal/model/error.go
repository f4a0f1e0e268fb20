package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidCoupon        = "INVALID_COUPON"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodePaymentDeclined      = "PAYMENT_DECLINED"
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidCard          = "INVALID_CARD"
	ErrCodeInvalidInstallments  = "INVALID_INSTALLMENTS"
	ErrCodeInvalidTotal         = "INVALID_TOTAL"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCoupon        = NewDomainError(ErrCodeInvalidCoupon, "Invalid coupon code")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound     = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrPaymentDeclined      = NewDomainError(ErrCodePaymentDeclined, "Payment was not authorised")
	ErrInvalidPaymentMethod = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method not supported")
	ErrCardRequired         = NewDomainError(ErrCodeMissingField, "Credit card details are required")
	ErrInvalidCard          = NewDomainError(ErrCodeInvalidCard, "Invalid credit card number")
	ErrInvalidInstallments  = NewDomainError(ErrCodeInvalidInstallments, "Installment count not available for this total")
	ErrInvalidTotal         = NewDomainError(ErrCodeInvalidTotal, "Order total must be greater than zero")
)
