package orders_test

import (
	"context"
	"errors"
	"testing"

	"blockflow/models"
	"blockflow/orders"
	"blockflow/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type failingOrders struct {
	*memory.OrderStore
}

func (failingOrders) Create(context.Context, *models.Order) error {
	return errors.New("disk full")
}

func setup(t *testing.T) (*memory.ProductStore, *memory.OrderStore) {
	t.Helper()
	products := memory.NewProductStore()
	require.NoError(t, products.Create(context.Background(), &models.Product{
		Name:          "Jumbo AAC Block",
		Dimensions:    "600x200x150mm",
		PricePerUnit:  decimal.RequireFromString("65.00"),
		StockQuantity: 10,
		Weight:        decimal.RequireFromString("11.00"),
		Category:      "Construction",
	}))
	return products, memory.NewOrderStore()
}

func stockOf(t *testing.T, products *memory.ProductStore) int {
	t.Helper()
	p, err := products.Get(context.Background(), 1)
	require.NoError(t, err)
	return p.StockQuantity
}

func TestOrdersService(t *testing.T) {
	ctx := context.Background()
	alice := orders.Caller{UserID: 1}
	bob := orders.Caller{UserID: 2}
	admin := orders.Caller{UserID: 3, Admin: true}

	t.Run("Create_ComputesTotalAndTakesStock", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)

		o, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 4, CustomerName: " Alice "})
		require.NoError(t, err)
		require.Equal(t, models.StatusNew, o.Status)
		require.Equal(t, "Alice", o.CustomerName)
		require.True(t, o.TotalAmount.Equal(decimal.NewFromInt(260)))
		require.Equal(t, int64(1), o.UserID)
		require.Equal(t, 6, stockOf(t, products))
	})

	t.Run("Create_RejectsShortStockAndUnknownProduct", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)

		_, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 11, CustomerName: "Alice"})
		require.ErrorIs(t, err, models.ErrInsufficientStock)
		require.Equal(t, 10, stockOf(t, products))

		_, err = svc.Create(ctx, alice, models.OrderRequest{ProductID: 9, Quantity: 1, CustomerName: "Alice"})
		require.ErrorIs(t, err, models.ErrNotFound)

		_, err = svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 0, CustomerName: ""})
		require.True(t, models.IsValidation(err))
	})

	t.Run("Create_RestoresStockWhenSaveFails", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(failingOrders{store}, products, nil)

		_, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 3, CustomerName: "Alice"})
		require.Error(t, err)
		require.Equal(t, 10, stockOf(t, products))
	})

	t.Run("Get_OwnerOrAdminOnly", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)
		o, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 1, CustomerName: "Alice"})
		require.NoError(t, err)

		_, err = svc.Get(ctx, alice, o.ID)
		require.NoError(t, err)
		_, err = svc.Get(ctx, admin, o.ID)
		require.NoError(t, err)
		_, err = svc.Get(ctx, bob, o.ID)
		require.ErrorIs(t, err, models.ErrForbidden)
		_, err = svc.Get(ctx, admin, 99)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("List_ScopesToCaller", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)
		_, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 1, CustomerName: "Alice"})
		require.NoError(t, err)
		_, err = svc.Create(ctx, bob, models.OrderRequest{ProductID: 1, Quantity: 1, CustomerName: "Bob"})
		require.NoError(t, err)

		mine, err := svc.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, mine, 1)

		all, err := svc.List(ctx, admin)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("Update_QuantityMovesStock", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)
		o, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 2, CustomerName: "Alice"})
		require.NoError(t, err)

		qty := 5
		updated, err := svc.Update(ctx, alice, o.ID, models.OrderPatch{Quantity: &qty})
		require.NoError(t, err)
		require.Equal(t, 5, updated.Quantity)
		require.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(325)))
		require.Equal(t, 5, stockOf(t, products))

		qty = 20
		_, err = svc.Update(ctx, alice, o.ID, models.OrderPatch{Quantity: &qty})
		require.ErrorIs(t, err, models.ErrInsufficientStock)
		require.Equal(t, 5, stockOf(t, products))
	})

	t.Run("Update_FollowsLifecycle", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)
		o, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 2, CustomerName: "Alice"})
		require.NoError(t, err)

		shipped := models.StatusShipped
		_, err = svc.Update(ctx, admin, o.ID, models.OrderPatch{Status: &shipped})
		require.ErrorIs(t, err, models.ErrInvalidTransition)

		paid := models.StatusPaid
		updated, err := svc.Update(ctx, admin, o.ID, models.OrderPatch{Status: &paid})
		require.NoError(t, err)
		require.Equal(t, models.StatusPaid, updated.Status)

		qty := 3
		_, err = svc.Update(ctx, alice, o.ID, models.OrderPatch{Quantity: &qty})
		require.True(t, models.IsValidation(err))
	})

	t.Run("Update_OwnerCanOnlyCancel", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)
		o, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 1, CustomerName: "Alice"})
		require.NoError(t, err)

		paid := models.StatusPaid
		_, err = svc.Update(ctx, alice, o.ID, models.OrderPatch{Status: &paid})
		require.ErrorIs(t, err, models.ErrForbidden)

		same := models.StatusNew
		_, err = svc.Update(ctx, alice, o.ID, models.OrderPatch{Status: &same})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, admin, o.ID, models.OrderPatch{Status: &paid})
		require.NoError(t, err)
		require.Equal(t, models.StatusPaid, updated.Status)

		shipped := models.StatusShipped
		_, err = svc.Update(ctx, alice, o.ID, models.OrderPatch{Status: &shipped})
		require.ErrorIs(t, err, models.ErrForbidden)

		got, err := svc.Get(ctx, alice, o.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusPaid, got.Status)
	})

	t.Run("Update_CancelReleasesStock", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)
		o, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 4, CustomerName: "Alice"})
		require.NoError(t, err)
		require.Equal(t, 6, stockOf(t, products))

		cancelled := models.StatusCancelled
		_, err = svc.Update(ctx, alice, o.ID, models.OrderPatch{Status: &cancelled})
		require.NoError(t, err)
		require.Equal(t, 10, stockOf(t, products))
	})

	t.Run("Delete_ReleasesUnshippedStock", func(t *testing.T) {
		products, store := setup(t)
		svc := orders.NewService(store, products, nil)
		o, err := svc.Create(ctx, alice, models.OrderRequest{ProductID: 1, Quantity: 4, CustomerName: "Alice"})
		require.NoError(t, err)

		require.ErrorIs(t, svc.Delete(ctx, bob, o.ID), models.ErrForbidden)
		require.NoError(t, svc.Delete(ctx, alice, o.ID))
		require.Equal(t, 10, stockOf(t, products))

		_, err = svc.Get(ctx, alice, o.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}
