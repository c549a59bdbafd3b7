package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	orderColumns = `id, user_id, total, status, payment_method, payment_status, transaction_id,
		gateway_order_id, gateway_payment_id, gateway_signature, billing_address, shipping_address,
		created_at, updated_at`

	paymentColumns = `id, order_id, amount, payment_method, status, transaction_id, gateway_response,
		created_at, updated_at`

	uniqueViolation = "23505"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Total,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.TransactionID,
		order.GatewayOrderID,
		order.GatewayPaymentID,
		order.GatewaySignature,
		nullJSON(order.BillingAddress),
		nullJSON(order.ShippingAddress),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().
				Str("order_id", order.ID.String()).
				Msg("gateway payment already bound to another order")
			return model.ErrGatewayPaymentReused
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, variant_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.VariantID, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Int64("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// CreatePayment inserts a payment row within the provided transaction.
func (r *orderRepository) CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Amount,
		payment.PaymentMethod,
		payment.Status,
		payment.TransactionID,
		nullJSON(payment.GatewayResponse),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", payment.OrderID.String()).
			Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items and payments.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error) {
	return r.getDetails(ctx, r.pool, id)
}

// GetByIDTx retrieves an order with its items and payments inside tx.
func (r *orderRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.OrderDetails, error) {
	return r.getDetails(ctx, tx, id)
}

func (r *orderRepository) getDetails(ctx context.Context, q querier, id uuid.UUID) (*model.OrderDetails, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	details := &model.OrderDetails{Order: order}
	if err := r.attach(ctx, q, []*model.OrderDetails{details}); err != nil {
		return nil, err
	}

	return details, nil
}

// ListByUser returns a user's orders with items and payments, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.OrderDetails, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query user orders")
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}

	orders, err := r.collectOrders(rows)
	if err != nil {
		return nil, err
	}

	details := make([]model.OrderDetails, len(orders))
	ptrs := make([]*model.OrderDetails, len(orders))
	for i := range orders {
		details[i] = model.OrderDetails{Order: orders[i]}
		ptrs[i] = &details[i]
	}

	if err := r.attach(ctx, r.pool, ptrs); err != nil {
		return nil, err
	}

	return details, nil
}

// List returns a page of orders and the total number matching the filter.
func (r *orderRepository) List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, int, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders WHERE ($1::text IS NULL OR status = $1)`
	if err := r.pool.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	offset := (filter.Page - 1) * filter.Limit
	rows, err := r.pool.Query(ctx, query, status, filter.Limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := r.collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus sets an order's fulfilment status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// LockPaymentState row-locks the order for the duration of tx.
func (r *orderRepository) LockPaymentState(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, userID int64) (*model.PaymentState, error) {
	query := `
		SELECT id, user_id, status, payment_status, gateway_payment_id
		FROM orders
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	var state model.PaymentState
	err := tx.QueryRow(ctx, query, orderID, userID).Scan(
		&state.OrderID,
		&state.UserID,
		&state.Status,
		&state.PaymentStatus,
		&state.GatewayPaymentID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &state, nil
}

// ConfirmPayment records the gateway confirmation on the order and its payments.
// Only a pending order advances to processing.
func (r *orderRepository) ConfirmPayment(ctx context.Context, tx pgx.Tx, c model.PaymentConfirmation) error {
	orderQuery := `
		UPDATE orders
		SET payment_status = $2,
			payment_method = $3,
			gateway_order_id = $4,
			gateway_payment_id = $5,
			gateway_signature = $6,
			status = CASE WHEN status = $7 THEN $8 ELSE status END,
			updated_at = $9
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, orderQuery,
		c.OrderID,
		model.PaymentStatusCompleted,
		c.PaymentMethod,
		c.Gateway.GatewayOrderID,
		c.Gateway.GatewayPaymentID,
		c.Gateway.Signature,
		model.OrderStatusPending,
		model.OrderStatusProcessing,
		c.ConfirmedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().
				Str("order_id", c.OrderID.String()).
				Str("gateway_payment_id", c.Gateway.GatewayPaymentID).
				Msg("gateway payment already bound to another order")
			return model.ErrGatewayPaymentReused
		}
		r.logger.Error().Err(err).Str("order_id", c.OrderID.String()).Msg("failed to confirm order payment")
		return fmt.Errorf("failed to confirm order payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	paymentQuery := `
		UPDATE payments
		SET status = $2, payment_method = $3, transaction_id = $4, updated_at = $5
		WHERE order_id = $1
	`

	_, err = tx.Exec(ctx, paymentQuery,
		c.OrderID,
		model.PaymentStatusCompleted,
		c.PaymentMethod,
		c.Gateway.GatewayPaymentID,
		c.ConfirmedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", c.OrderID.String()).Msg("failed to confirm payment rows")
		return fmt.Errorf("failed to confirm payment rows: %w", err)
	}

	return nil
}

// TransactionHistory returns a user's payments, newest first.
func (r *orderRepository) TransactionHistory(ctx context.Context, userID int64) ([]model.TransactionSummary, error) {
	query := `
		SELECT p.id, p.order_id, p.amount, p.payment_method, p.status, p.transaction_id,
			p.gateway_response, p.created_at, p.updated_at, o.user_id, o.status, o.total
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query transaction history")
		return nil, fmt.Errorf("failed to query transaction history: %w", err)
	}

	return r.collectTransactions(rows)
}

// AllTransactions returns every payment, newest first.
func (r *orderRepository) AllTransactions(ctx context.Context, limit, offset int) ([]model.TransactionSummary, error) {
	query := `
		SELECT p.id, p.order_id, p.amount, p.payment_method, p.status, p.transaction_id,
			p.gateway_response, p.created_at, p.updated_at, o.user_id, o.status, o.total
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query transactions")
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	return r.collectTransactions(rows)
}

// attach loads items and payments for the given orders with two queries.
func (r *orderRepository) attach(ctx context.Context, q querier, orders []*model.OrderDetails) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*model.OrderDetails, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		o.Items = []model.OrderItem{}
		o.Payments = []model.Payment{}
		byID[o.ID] = o
	}

	itemRows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, variant_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item model.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Quantity, &item.Price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}
	itemRows.Close()

	paymentRows, err := q.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE order_id = ANY($1)
		ORDER BY created_at
	`, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query payments")
		return fmt.Errorf("failed to query payments: %w", err)
	}
	defer paymentRows.Close()

	for paymentRows.Next() {
		p, err := scanPayment(paymentRows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment row")
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		if o, ok := byID[p.OrderID]; ok {
			o.Payments = append(o.Payments, p)
		}
	}
	if err := paymentRows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating payment rows")
		return fmt.Errorf("error iterating payments: %w", err)
	}

	return nil
}

func (r *orderRepository) collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) collectTransactions(rows pgx.Rows) ([]model.TransactionSummary, error) {
	defer rows.Close()

	txns := []model.TransactionSummary{}
	for rows.Next() {
		var t model.TransactionSummary
		err := rows.Scan(
			&t.ID,
			&t.OrderID,
			&t.Amount,
			&t.PaymentMethod,
			&t.Status,
			&t.TransactionID,
			&t.GatewayResponse,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.UserID,
			&t.OrderStatus,
			&t.OrderTotal,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan transaction row")
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating transaction rows")
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Total,
		&o.Status,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.TransactionID,
		&o.GatewayOrderID,
		&o.GatewayPaymentID,
		&o.GatewaySignature,
		&o.BillingAddress,
		&o.ShippingAddress,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func scanPayment(row pgx.Row) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.Amount,
		&p.PaymentMethod,
		&p.Status,
		&p.TransactionID,
		&p.GatewayResponse,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// nullJSON maps an empty payload to SQL NULL.
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
