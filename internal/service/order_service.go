package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	sink      notify.Sink
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, sink notify.Sink, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		sink:      sink,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// ListForUser returns the user's orders, newest first.
func (s *orderService) ListForUser(ctx context.Context, userID int64) ([]model.OrderDetails, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetForUser returns one of the user's orders. Orders owned by someone else
// are reported as not found.
func (s *orderService) GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*model.OrderDetails, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		s.logger.Warn().
			Int64("user_id", userID).
			Str("order_id", id.String()).
			Msg("order requested by non-owner")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// List returns a page of orders, optionally filtered by status.
func (s *orderService) List(ctx context.Context, filter model.OrderListFilter) (*model.OrderPage, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.ErrInvalidOrderStatus
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Limit, _ = clampPage(filter.Limit, 0)

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       filter.Page,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// Get returns an order with its items and payments.
func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus changes an order's fulfilment status and notifies listeners.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderDetails, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidOrderStatus
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	evt, err := notify.NewEvent(notify.EventOrderStatusUpdated, id, notify.OrderStatusUpdatedPayload{
		OrderID: id,
		UserID:  order.UserID,
		Status:  string(status),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to build event")
	} else {
		s.sink.Publish(ctx, evt)
	}

	return order, nil
}
