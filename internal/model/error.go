package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeMissingField            = "MISSING_FIELD"
	ErrCodeInvalidParameter        = "INVALID_PARAMETER"
	ErrCodeEmptyCart               = "EMPTY_CART"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInvalidPaymentStatus    = "INVALID_PAYMENT_STATUS"
	ErrCodeInvalidSignature        = "INVALID_SIGNATURE"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeOrderCancelled          = "ORDER_CANCELLED"
	ErrCodeNotificationNotFound    = "NOTIFICATION_NOT_FOUND"
	ErrCodePaymentAlreadyCompleted = "PAYMENT_ALREADY_COMPLETED"
	ErrCodeGatewayPaymentReused    = "GATEWAY_PAYMENT_REUSED"
	ErrCodeInvalidOrderStatus      = "INVALID_ORDER_STATUS"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
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
	ErrEmptyCart               = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrProductNotFound         = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInsufficientStock       = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrInvalidQuantity         = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPaymentStatus    = NewDomainError(ErrCodeInvalidPaymentStatus, "Payment status must be pending, completed or failed")
	ErrInvalidSignature        = NewDomainError(ErrCodeInvalidSignature, "Invalid signature")
	ErrOrderNotFound           = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderCancelled          = NewDomainError(ErrCodeOrderCancelled, "Order has been cancelled")
	ErrNotificationNotFound    = NewDomainError(ErrCodeNotificationNotFound, "Notification not found")
	ErrPaymentAlreadyCompleted = NewDomainError(ErrCodePaymentAlreadyCompleted, "Order payment has already been completed by another transaction")
	ErrGatewayPaymentReused    = NewDomainError(ErrCodeGatewayPaymentReused, "Gateway payment is already bound to another order")
	ErrInvalidOrderStatus      = NewDomainError(ErrCodeInvalidOrderStatus, "Invalid order status")
	ErrUnauthorised            = NewDomainError(ErrCodeUnauthorised, "Authentication required")
)

// ProductNotFoundError is returned when a cart line references a product
// that does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product with ID %d not found", e.ProductID)
}

// Unwrap exposes ErrProductNotFound to errors.Is and errors.As.
func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// InsufficientStockError is returned when a cart line asks for more units
// than the product has available.
type InsufficientStockError struct {
	ProductID int64
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product %s. Available: %d", e.Title, e.Available)
}

// Unwrap exposes ErrInsufficientStock to errors.Is and errors.As.
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
