package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of an order or payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// DefaultPaymentMethod is used when a checkout does not name one.
const DefaultPaymentMethod = "COD"

// Order represents a customer order.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           int64           `json:"userId" db:"user_id"`
	Total            decimal.Decimal `json:"total" db:"total"`
	Status           OrderStatus     `json:"status" db:"status"`
	PaymentMethod    string          `json:"paymentMethod" db:"payment_method"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	TransactionID    *string         `json:"transactionId,omitempty" db:"transaction_id"`
	GatewayOrderID   *string         `json:"gatewayOrderId,omitempty" db:"gateway_order_id"`
	GatewayPaymentID *string         `json:"gatewayPaymentId,omitempty" db:"gateway_payment_id"`
	GatewaySignature *string         `json:"gatewaySignature,omitempty" db:"gateway_signature"`
	BillingAddress   json.RawMessage `json:"billingAddress,omitempty" db:"billing_address"`
	ShippingAddress  json.RawMessage `json:"shippingAddress,omitempty" db:"shipping_address"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. Price is the unit price
// captured at checkout.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	VariantID *int64          `json:"variantId,omitempty" db:"variant_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// OrderDetails is an order together with its items and payments.
type OrderDetails struct {
	Order
	Items    []OrderItem `json:"items"`
	Payments []Payment   `json:"payments"`
}

// OrderListFilter selects a page of orders for the admin listing.
type OrderListFilter struct {
	Status *OrderStatus
	Page   int
	Limit  int
}

// OrderPage is a page of orders plus pagination metadata.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}

// UpdateOrderStatusRequest is the admin payload for changing an order's status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// GatewayPayment identifies a payment as reported by the payment gateway.
type GatewayPayment struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"gatewaySignature"`
}

// CheckoutRequest represents the request payload for checkout.
type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items"`
	PaymentMethod   string                `json:"paymentMethod"`
	PaymentStatus   PaymentStatus         `json:"paymentStatus"`
	TransactionID   *string               `json:"transactionId,omitempty"`
	BillingAddress  json.RawMessage       `json:"billingAddress,omitempty"`
	ShippingAddress json.RawMessage       `json:"shippingAddress,omitempty"`
	GatewayResponse json.RawMessage       `json:"gatewayResponse,omitempty"`
	Gateway         *GatewayPayment       `json:"gateway,omitempty"`
}

// CheckoutItemRequest represents a single line in a checkout request.
type CheckoutItemRequest struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CheckoutResult is returned after a successful checkout.
type CheckoutResult struct {
	Message string          `json:"message"`
	OrderID uuid.UUID       `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
}
