package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an entry in the admin notification feed.
type Notification struct {
	ID        int64      `json:"id" db:"id"`
	UserID    *int64     `json:"userId,omitempty" db:"user_id"`
	OrderID   *uuid.UUID `json:"orderId,omitempty" db:"order_id"`
	Type      string     `json:"type" db:"type"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	IsRead    bool       `json:"isRead" db:"is_read"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// NotificationFeed is the admin feed response.
type NotificationFeed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}
