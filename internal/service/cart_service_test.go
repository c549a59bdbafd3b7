package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCartService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces cart with defaulted quantity", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		productRepo := new(MockProductRepository)
		svc := NewCartService(cartRepo, productRepo, zerolog.Nop())

		want := []model.CartLine{
			{UserID: testUserID, ProductID: 1, Quantity: 1},
			{UserID: testUserID, ProductID: 2, Quantity: 3},
		}
		productRepo.On("GetByIDs", ctx, []int64{1, 2}).Return([]model.Product{{ID: 1, IsActive: true}, {ID: 2, IsActive: true}}, nil)
		cartRepo.On("Replace", ctx, testUserID, want).Return(nil)
		cartRepo.On("ListByUser", ctx, testUserID).Return(want, nil)

		got, err := svc.Sync(ctx, testUserID, &model.CartSyncRequest{Items: []model.CartSyncItem{
			{ProductID: 1},
			{ProductID: 2, Quantity: intPtr(3)},
		}})

		require.NoError(t, err)
		assert.Equal(t, want, got)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Empty request clears cart", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		productRepo := new(MockProductRepository)
		svc := NewCartService(cartRepo, productRepo, zerolog.Nop())

		cartRepo.On("Replace", ctx, testUserID, []model.CartLine{}).Return(nil)
		cartRepo.On("ListByUser", ctx, testUserID).Return([]model.CartLine{}, nil)

		got, err := svc.Sync(ctx, testUserID, nil)

		require.NoError(t, err)
		assert.Empty(t, got)
		productRepo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
	})

	t.Run("Unknown product", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		productRepo := new(MockProductRepository)
		svc := NewCartService(cartRepo, productRepo, zerolog.Nop())

		productRepo.On("GetByIDs", ctx, []int64{1, 77}).Return([]model.Product{{ID: 1, IsActive: true}}, nil)

		_, err := svc.Sync(ctx, testUserID, &model.CartSyncRequest{Items: []model.CartSyncItem{
			{ProductID: 1},
			{ProductID: 77},
		}})

		var notFound *model.ProductNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(77), notFound.ProductID)
		cartRepo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Inactive product", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		productRepo := new(MockProductRepository)
		svc := NewCartService(cartRepo, productRepo, zerolog.Nop())

		productRepo.On("GetByIDs", ctx, []int64{4}).Return([]model.Product{{ID: 4}}, nil)

		_, err := svc.Sync(ctx, testUserID, &model.CartSyncRequest{Items: []model.CartSyncItem{{ProductID: 4}}})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		cartRepo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non-positive quantity", func(t *testing.T) {
		svc := NewCartService(new(MockCartRepository), new(MockProductRepository), zerolog.Nop())

		_, err := svc.Sync(ctx, testUserID, &model.CartSyncRequest{Items: []model.CartSyncItem{
			{ProductID: 1, Quantity: intPtr(0)},
		}})
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})

	t.Run("Replace fails", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		productRepo := new(MockProductRepository)
		svc := NewCartService(cartRepo, productRepo, zerolog.Nop())

		productRepo.On("GetByIDs", ctx, []int64{1}).Return([]model.Product{{ID: 1, IsActive: true}}, nil)
		cartRepo.On("Replace", ctx, testUserID, mock.Anything).Return(errors.New("db down"))

		_, err := svc.Sync(ctx, testUserID, &model.CartSyncRequest{Items: []model.CartSyncItem{{ProductID: 1}}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to sync cart")
	})
}

func TestCartService_Get(t *testing.T) {
	ctx := context.Background()
	cartRepo := new(MockCartRepository)
	svc := NewCartService(cartRepo, new(MockProductRepository), zerolog.Nop())

	cartRepo.On("ListByUser", ctx, testUserID).Return(nil, errors.New("db down"))

	_, err := svc.Get(ctx, testUserID)
	require.Error(t, err)
}
