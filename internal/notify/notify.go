// Package notify delivers order events to downstream listeners after a
// workflow has committed. Delivery is best effort: failures are logged and
// never reach the caller.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types emitted by the order workflows.
const (
	EventOrderCreated       = "order.created"
	EventPaymentVerified    = "order.payment_verified"
	EventOrderStatusUpdated = "order.status_updated"
)

// Producer identifies this service in event envelopes.
const Producer = "storefront-api"

// Event is the envelope published to every listener.
type Event struct {
	ID            uuid.UUID       `json:"eventId"`
	Type          string          `json:"eventType"`
	Version       int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderCreatedPayload accompanies EventOrderCreated.
type OrderCreatedPayload struct {
	OrderID       uuid.UUID       `json:"orderId"`
	UserID        int64           `json:"userId"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	PaymentMethod string          `json:"paymentMethod"`
	ItemCount     int             `json:"itemCount"`
}

// PaymentVerifiedPayload accompanies EventPaymentVerified.
type PaymentVerifiedPayload struct {
	OrderID          uuid.UUID       `json:"orderId"`
	UserID           int64           `json:"userId"`
	Total            decimal.Decimal `json:"total"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"paymentMethod"`
	GatewayPaymentID string          `json:"gatewayPaymentId"`
}

// OrderStatusUpdatedPayload accompanies EventOrderStatusUpdated.
type OrderStatusUpdatedPayload struct {
	OrderID uuid.UUID `json:"orderId"`
	UserID  int64     `json:"userId"`
	Status  string    `json:"status"`
}

// NewEvent wraps payload in an envelope correlated by orderID.
func NewEvent(eventType string, orderID uuid.UUID, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return Event{
		ID:            uuid.New(),
		Type:          eventType,
		Version:       1,
		OccurredAt:    time.Now().UTC(),
		Producer:      Producer,
		CorrelationID: orderID.String(),
		Payload:       raw,
	}, nil
}

// Notifier delivers a single event.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, evt Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Sink accepts events from the workflows. Publish never fails and never
// blocks on delivery.
type Sink interface {
	Publish(ctx context.Context, evt Event)
}
