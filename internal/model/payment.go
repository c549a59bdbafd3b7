package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records a settlement attempt for an order.
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         uuid.UUID       `json:"orderId" db:"order_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	Status          PaymentStatus   `json:"status" db:"status"`
	TransactionID   *string         `json:"transactionId,omitempty" db:"transaction_id"`
	GatewayResponse json.RawMessage `json:"gatewayResponse,omitempty" db:"gateway_response"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// PaymentConfirmation is the state written when the gateway confirms a payment.
type PaymentConfirmation struct {
	OrderID       uuid.UUID
	PaymentMethod string
	Gateway       GatewayPayment
	ConfirmedAt   time.Time
}

// PaymentState is the locked payment-relevant view of an order.
type PaymentState struct {
	OrderID          uuid.UUID
	UserID           int64
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	GatewayPaymentID *string
}

// VerifyPaymentRequest represents the payload for gateway payment verification.
type VerifyPaymentRequest struct {
	GatewayPayment
	OrderID *uuid.UUID `json:"orderId,omitempty"`
}

// VerifyPaymentResult is the verification response body.
type VerifyPaymentResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	OrderID *uuid.UUID    `json:"orderId,omitempty"`
	Order   *OrderDetails `json:"order,omitempty"`
}

// TransactionSummary is a payment joined with its order for history listings.
type TransactionSummary struct {
	Payment
	UserID      int64           `json:"userId"`
	OrderStatus OrderStatus     `json:"orderStatus"`
	OrderTotal  decimal.Decimal `json:"orderTotal"`
}
