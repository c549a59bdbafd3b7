package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, userID int64) ([]model.CartLine, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return lines, nil
}

// Sync replaces the cart wholesale. Every referenced product must exist and
// be active.
func (s *cartService) Sync(ctx context.Context, userID int64, req *model.CartSyncRequest) ([]model.CartLine, error) {
	if req == nil {
		req = &model.CartSyncRequest{}
	}

	lines := make([]model.CartLine, 0, len(req.Items))
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		if qty <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if item.ProductID <= 0 {
			return nil, &model.ProductNotFoundError{ProductID: item.ProductID}
		}

		lines = append(lines, model.CartLine{
			UserID:    userID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  qty,
		})
		ids = append(ids, item.ProductID)
	}

	if len(ids) > 0 {
		products, err := s.productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to sync cart: %w", err)
		}
		found := make(map[int64]bool, len(products))
		for _, p := range products {
			found[p.ID] = p.IsActive
		}
		for _, id := range ids {
			if !found[id] {
				return nil, &model.ProductNotFoundError{ProductID: id}
			}
		}
	}

	if err := s.cartRepo.Replace(ctx, userID, lines); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to replace cart")
		return nil, fmt.Errorf("failed to sync cart: %w", err)
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Int("line_count", len(lines)).
		Msg("cart synced")

	return s.Get(ctx, userID)
}
