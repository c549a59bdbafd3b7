package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner starts database transactions owned by the service layer.
type TxBeginner interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type poolTxBeginner struct {
	pool *pgxpool.Pool
}

// NewTxBeginner returns a TxBeginner backed by pool.
func NewTxBeginner(pool *pgxpool.Pool) TxBeginner {
	return poolTxBeginner{pool: pool}
}

func (b poolTxBeginner) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return b.pool.Begin(ctx)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// LockForCheckout row-locks the given products inside tx, in ascending id
	// order, and returns the rows that exist.
	LockForCheckout(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Product, error)

	// DecrementStock atomically subtracts qty from the product's stock.
	// Returns false when the product has fewer than qty units.
	DecrementStock(ctx context.Context, tx pgx.Tx, id int64, qty int) (bool, error)

	// UpsertBySKU inserts or updates catalogue records keyed by SKU.
	UpsertBySKU(ctx context.Context, tx pgx.Tx, products []model.ProductImport) (int, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	TxBeginner

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// CreatePayment inserts a payment row within the provided transaction.
	CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// GetByID retrieves an order with its items and payments. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error)

	// GetByIDTx is GetByID inside a transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.OrderDetails, error)

	// ListByUser returns a user's orders with items and payments, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.OrderDetails, error)

	// List returns a page of orders for the admin listing.
	List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, int, error)

	// UpdateStatus sets an order's fulfilment status. Returns false when absent.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (bool, error)

	// LockPaymentState row-locks a user's order and returns its payment state.
	// Returns nil when the order does not exist or belongs to another user.
	LockPaymentState(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, userID int64) (*model.PaymentState, error)

	// ConfirmPayment marks the order and its payments as completed.
	ConfirmPayment(ctx context.Context, tx pgx.Tx, c model.PaymentConfirmation) error

	// TransactionHistory returns a user's payments, newest first.
	TransactionHistory(ctx context.Context, userID int64) ([]model.TransactionSummary, error)

	// AllTransactions returns every payment, newest first.
	AllTransactions(ctx context.Context, limit, offset int) ([]model.TransactionSummary, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// ListByUser returns the user's cart lines.
	ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error)

	// Replace swaps the user's cart for lines in a single transaction.
	Replace(ctx context.Context, userID int64, lines []model.CartLine) error

	// ClearByUser deletes the user's cart lines within the provided transaction.
	ClearByUser(ctx context.Context, tx pgx.Tx, userID int64) error
}

// NotificationRepository defines the interface for the admin notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context) (int, error)
	MarkAllRead(ctx context.Context) error
	// MarkRead returns false when the notification does not exist.
	MarkRead(ctx context.Context, id int64) (bool, error)
}
