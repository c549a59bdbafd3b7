package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// notificationStore is satisfied by repository.NotificationRepository.
type notificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// StoreNotifier persists events in the admin notification feed.
type StoreNotifier struct {
	store notificationStore
}

// NewStoreNotifier creates a notifier writing to store.
func NewStoreNotifier(store notificationStore) *StoreNotifier {
	return &StoreNotifier{store: store}
}

// Notify records evt as an unread notification.
func (n *StoreNotifier) Notify(ctx context.Context, evt Event) error {
	entry, err := toNotification(evt)
	if err != nil {
		return err
	}

	if err := n.store.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	return nil
}

func toNotification(evt Event) (*model.Notification, error) {
	var ref struct {
		OrderID uuid.UUID `json:"orderId"`
		UserID  int64     `json:"userId"`
		Total   string    `json:"total"`
		Status  string    `json:"status"`
	}
	if err := json.Unmarshal(evt.Payload, &ref); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", evt.Type, err)
	}

	n := &model.Notification{
		Type:    evt.Type,
		OrderID: &ref.OrderID,
		UserID:  &ref.UserID,
	}

	switch evt.Type {
	case EventOrderCreated:
		n.Title = "New order placed"
		n.Message = fmt.Sprintf("Order %s was placed for %s", ref.OrderID, ref.Total)
	case EventPaymentVerified:
		n.Title = "Payment received"
		n.Message = fmt.Sprintf("Payment for order %s was verified", ref.OrderID)
	case EventOrderStatusUpdated:
		n.Title = "Order status updated"
		n.Message = fmt.Sprintf("Order %s is now %s", ref.OrderID, ref.Status)
	default:
		n.Title = evt.Type
		n.Message = fmt.Sprintf("Order %s", ref.OrderID)
	}

	return n, nil
}
