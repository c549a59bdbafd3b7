package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFixture struct {
	db       *testutil.TestDB
	orders   repository.OrderRepository
	carts    repository.CartRepository
	checkout CheckoutService
	payments PaymentService
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zerolog.Nop()

	orders := repository.NewOrderRepository(db.Pool, logger)
	products := repository.NewProductRepository(db.Pool, logger)
	carts := repository.NewCartRepository(db.Pool, logger)
	verifier := payment.NewHMACVerifier(testGatewaySecret)

	sink := notify.NewBroadcaster(notify.NewStoreNotifier(repository.NewNotificationRepository(db.Pool, logger)), time.Second, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sink.Close(ctx)
	})

	return &storeFixture{
		db:       db,
		orders:   orders,
		carts:    carts,
		checkout: NewCheckoutService(orders, products, carts, verifier, sink, logger),
		payments: NewPaymentService(orders, verifier, "razorpay", sink, logger),
	}
}

func TestCheckout_Integration(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	t.Run("concurrent checkouts never oversell", func(t *testing.T) {
		f.db.Truncate(t)
		productID := f.db.SeedProduct(t, testutil.Product{SKU: "LAST", Price: "15.00", Stock: 5})

		const buyers = 12
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			rejected  int
		)
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_, err := f.checkout.Checkout(ctx, userID, &model.CheckoutRequest{
					Items: []model.CheckoutItemRequest{{ProductID: productID, Quantity: 1}},
				})

				mu.Lock()
				defer mu.Unlock()
				var stockErr *model.InsufficientStockError
				switch {
				case err == nil:
					succeeded++
				case errors.As(err, &stockErr):
					rejected++
				default:
					t.Errorf("unexpected checkout error: %v", err)
				}
			}(int64(i + 1))
		}
		wg.Wait()

		assert.Equal(t, 5, succeeded)
		assert.Equal(t, buyers-5, rejected)
		assert.Equal(t, 0, f.db.Stock(t, productID))
		assert.Equal(t, 5, f.db.Count(t, "orders"))
	})

	t.Run("insufficient stock rolls back every line", func(t *testing.T) {
		f.db.Truncate(t)
		plenty := f.db.SeedProduct(t, testutil.Product{SKU: "PLENTY", Price: "10.00", Stock: 5})
		scarce := f.db.SeedProduct(t, testutil.Product{SKU: "SCARCE", Price: "20.00", Stock: 1})
		require.NoError(t, f.carts.Replace(ctx, testUserID, []model.CartLine{{ProductID: plenty, Quantity: 2}}))

		_, err := f.checkout.Checkout(ctx, testUserID, &model.CheckoutRequest{
			Items: []model.CheckoutItemRequest{
				{ProductID: plenty, Quantity: 2},
				{ProductID: scarce, Quantity: 3},
			},
		})

		var stockErr *model.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, scarce, stockErr.ProductID)
		assert.Equal(t, 5, f.db.Stock(t, plenty))
		assert.Equal(t, 1, f.db.Stock(t, scarce))
		assert.Equal(t, 0, f.db.Count(t, "orders"))
		assert.Equal(t, 0, f.db.Count(t, "payments"))

		cart, err := f.carts.ListByUser(ctx, testUserID)
		require.NoError(t, err)
		assert.Len(t, cart, 1, "cart survives a failed checkout")
	})

	t.Run("inactive products cannot be bought", func(t *testing.T) {
		f.db.Truncate(t)
		retired := f.db.SeedProduct(t, testutil.Product{SKU: "RETIRED", Price: "10.00", Stock: 5, Inactive: true})

		_, err := f.checkout.Checkout(ctx, testUserID, &model.CheckoutRequest{
			Items: []model.CheckoutItemRequest{{ProductID: retired, Quantity: 1}},
		})

		var notFound *model.ProductNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, retired, notFound.ProductID)
		assert.Equal(t, 5, f.db.Stock(t, retired))
		assert.Equal(t, 0, f.db.Count(t, "orders"))
	})

	t.Run("successful checkout prices server side and clears the cart", func(t *testing.T) {
		f.db.Truncate(t)
		productID := f.db.SeedProduct(t, testutil.Product{SKU: "SALE", Price: "50.00", DiscountPrice: "40.00", Stock: 4})
		require.NoError(t, f.carts.Replace(ctx, testUserID, []model.CartLine{{ProductID: productID, Quantity: 2}}))

		result, err := f.checkout.Checkout(ctx, testUserID, &model.CheckoutRequest{
			Items: []model.CheckoutItemRequest{{ProductID: productID, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.True(t, result.Total.Equal(dec("80.00")))

		order, err := f.orders.GetByID(ctx, result.OrderID)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, model.OrderStatusPending, order.Status)
		require.Len(t, order.Items, 1)
		assert.True(t, order.Items[0].Price.Equal(dec("40.00")))
		assert.Equal(t, 2, f.db.Stock(t, productID))

		cart, err := f.carts.ListByUser(ctx, testUserID)
		require.NoError(t, err)
		assert.Empty(t, cart)
	})
}

func TestVerify_Integration(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	place := func(t *testing.T) *model.CheckoutResult {
		t.Helper()
		productID := f.db.SeedProduct(t, testutil.Product{Price: "30.00", Stock: 10})
		result, err := f.checkout.Checkout(ctx, testUserID, &model.CheckoutRequest{
			Items: []model.CheckoutItemRequest{{ProductID: productID, Quantity: 1}},
		})
		require.NoError(t, err)
		return result
	}

	t.Run("replayed verification is idempotent", func(t *testing.T) {
		f.db.Truncate(t)
		placed := place(t)
		req := signedRequest(&placed.OrderID, "order_gw_1", "pay_gw_1")

		first, err := f.payments.Verify(ctx, testUserID, req)
		require.NoError(t, err)
		assert.True(t, first.Success)

		second, err := f.payments.Verify(ctx, testUserID, req)
		require.NoError(t, err)
		assert.True(t, second.Success)

		order, err := f.orders.GetByID(ctx, placed.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusProcessing, order.Status)
		assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
		require.NotNil(t, order.GatewayPaymentID)
		assert.Equal(t, "pay_gw_1", *order.GatewayPaymentID)

		other := signedRequest(&placed.OrderID, "order_gw_1", "pay_gw_2")
		_, err = f.payments.Verify(ctx, testUserID, other)
		assert.ErrorIs(t, err, model.ErrPaymentAlreadyCompleted)
	})

	t.Run("bad signature changes nothing", func(t *testing.T) {
		f.db.Truncate(t)
		placed := place(t)
		req := signedRequest(&placed.OrderID, "order_gw_1", "pay_gw_1")
		req.Signature = "deadbeef"

		_, err := f.payments.Verify(ctx, testUserID, req)
		assert.ErrorIs(t, err, model.ErrInvalidSignature)

		order, err := f.orders.GetByID(ctx, placed.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPending, order.Status)
		assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
		assert.Nil(t, order.GatewayPaymentID)
	})

	t.Run("cancelled order is not marked paid", func(t *testing.T) {
		f.db.Truncate(t)
		placed := place(t)
		updated, err := f.orders.UpdateStatus(ctx, placed.OrderID, model.OrderStatusCancelled)
		require.NoError(t, err)
		require.True(t, updated)

		_, err = f.payments.Verify(ctx, testUserID, signedRequest(&placed.OrderID, "order_gw_1", "pay_gw_1"))
		assert.ErrorIs(t, err, model.ErrOrderCancelled)

		order, err := f.orders.GetByID(ctx, placed.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, order.Status)
		assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
		assert.Nil(t, order.GatewayPaymentID)
	})

	t.Run("another user's order is not found", func(t *testing.T) {
		f.db.Truncate(t)
		placed := place(t)

		_, err := f.payments.Verify(ctx, testUserID+1, signedRequest(&placed.OrderID, "order_gw_1", "pay_gw_1"))
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}
