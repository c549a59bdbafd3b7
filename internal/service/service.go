package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for the product catalogue.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single active product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// CheckoutService converts a user's cart into an order.
type CheckoutService interface {
	// Checkout validates stock, prices every line server-side and persists the
	// order, its payment and items while clearing the cart, all in one
	// transaction.
	Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (*model.CheckoutResult, error)
}

// PaymentService reconciles gateway payments with orders.
type PaymentService interface {
	// Verify checks the gateway signature and, when an order id is supplied,
	// marks the order as paid.
	Verify(ctx context.Context, userID int64, req *model.VerifyPaymentRequest) (*model.VerifyPaymentResult, error)

	// History returns the user's payments.
	History(ctx context.Context, userID int64) ([]model.TransactionSummary, error)

	// AllTransactions returns every payment for the admin view.
	AllTransactions(ctx context.Context, limit, offset int) ([]model.TransactionSummary, error)
}

// CartService manages the persisted cart.
type CartService interface {
	Get(ctx context.Context, userID int64) ([]model.CartLine, error)
	// Sync replaces the user's cart with the request's lines.
	Sync(ctx context.Context, userID int64, req *model.CartSyncRequest) ([]model.CartLine, error)
}

// OrderService defines read and admin operations on orders.
type OrderService interface {
	ListForUser(ctx context.Context, userID int64) ([]model.OrderDetails, error)
	GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*model.OrderDetails, error)
	List(ctx context.Context, filter model.OrderListFilter) (*model.OrderPage, error)
	Get(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderDetails, error)
}

// NotificationService serves the admin notification feed.
type NotificationService interface {
	List(ctx context.Context, limit int) (*model.NotificationFeed, error)
	MarkAllRead(ctx context.Context) error
	MarkRead(ctx context.Context, id int64) error
}
