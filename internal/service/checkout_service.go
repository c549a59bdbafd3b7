package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const checkoutSuccessMessage = "Order placed successfully"

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	verifier    payment.Verifier
	sink        notify.Sink
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	verifier payment.Verifier,
	sink notify.Sink,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		verifier:    verifier,
		sink:        sink,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout places an order for userID.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (result *model.CheckoutResult, err error) {
	if err := s.validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = model.PaymentStatusPending
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.DefaultPaymentMethod
	}

	if req.Gateway != nil {
		g := req.Gateway
		if !s.verifier.Verify(g.GatewayOrderID, g.GatewayPaymentID, g.Signature) {
			s.logger.Warn().
				Int64("user_id", userID).
				Str("gateway_order_id", g.GatewayOrderID).
				Msg("checkout gateway signature mismatch")
			return nil, model.ErrInvalidSignature
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	products, err := s.productRepo.LockForCheckout(ctx, tx, distinctProductIDs(req.Items))
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	byID := make(map[int64]*model.Product, len(products))
	remaining := make(map[int64]int, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
		remaining[products[i].ID] = products[i].Stock
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          model.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   paymentStatus,
		TransactionID:   req.TransactionID,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if paymentStatus == model.PaymentStatusCompleted {
		order.Status = model.OrderStatusProcessing
	}
	if g := req.Gateway; g != nil {
		order.GatewayOrderID = &g.GatewayOrderID
		order.GatewayPaymentID = &g.GatewayPaymentID
		order.GatewaySignature = &g.Signature
	}

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsActive {
			s.logger.Warn().
				Int64("user_id", userID).
				Int64("product_id", line.ProductID).
				Msg("checkout references unknown product")
			err = &model.ProductNotFoundError{ProductID: line.ProductID}
			return nil, err
		}

		if remaining[product.ID] < line.Quantity {
			s.logger.Warn().
				Int64("user_id", userID).
				Int64("product_id", product.ID).
				Int("requested", line.Quantity).
				Int("available", remaining[product.ID]).
				Msg("insufficient stock")
			err = &model.InsufficientStockError{
				ProductID: product.ID,
				Title:     product.Title,
				Requested: line.Quantity,
				Available: remaining[product.ID],
			}
			return nil, err
		}

		price := product.UnitPrice()
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))

		var decremented bool
		decremented, err = s.productRepo.DecrementStock(ctx, tx, product.ID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if !decremented {
			err = &model.InsufficientStockError{
				ProductID: product.ID,
				Title:     product.Title,
				Requested: line.Quantity,
				Available: remaining[product.ID],
			}
			return nil, err
		}
		remaining[product.ID] -= line.Quantity

		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     price,
		})
	}

	order.Total = total

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, err
	}

	pay := &model.Payment{
		ID:              uuid.New(),
		OrderID:         order.ID,
		Amount:          total,
		PaymentMethod:   paymentMethod,
		Status:          paymentStatus,
		TransactionID:   req.TransactionID,
		GatewayResponse: req.GatewayResponse,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err = s.orderRepo.CreatePayment(ctx, tx, pay); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create payment")
		return nil, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, err
	}

	if err = s.cartRepo.ClearByUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int64("user_id", userID).
		Str("total", total.StringFixed(2)).
		Int("item_count", len(items)).
		Msg("order placed")

	s.publish(ctx, notify.EventOrderCreated, order.ID, notify.OrderCreatedPayload{
		OrderID:       order.ID,
		UserID:        userID,
		Total:         total,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(items),
	})

	return &model.CheckoutResult{
		Message: checkoutSuccessMessage,
		OrderID: order.ID,
		Total:   total,
	}, nil
}

func (s *checkoutService) publish(ctx context.Context, eventType string, orderID uuid.UUID, payload any) {
	evt, err := notify.NewEvent(eventType, orderID, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to build event")
		return
	}
	s.sink.Publish(ctx, evt)
}

// validateCheckoutRequest validates the checkout request.
func (s *checkoutService) validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyCart
	}

	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return &model.ProductNotFoundError{ProductID: item.ProductID}
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	if req.PaymentStatus != "" && !req.PaymentStatus.Valid() {
		return model.ErrInvalidPaymentStatus
	}

	return nil
}

// distinctProductIDs returns the unique product ids of items in ascending order.
func distinctProductIDs(items []model.CheckoutItemRequest) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
