package model

import "time"

// CartLine is a persisted shopping-cart entry for a user.
type CartLine struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	VariantID *int64    `json:"variantId,omitempty" db:"variant_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CartSyncRequest replaces the user's cart wholesale.
type CartSyncRequest struct {
	Items []CartSyncItem `json:"items"`
}

// CartSyncItem is a single line in a cart sync request. A missing quantity
// defaults to one.
type CartSyncItem struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`
	Quantity  *int   `json:"quantity,omitempty"`
}
