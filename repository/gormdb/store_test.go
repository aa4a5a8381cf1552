package gormdb_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"blockflow/catalog"
	"blockflow/database"
	"blockflow/models"
	"blockflow/repository/gormdb"
	"blockflow/seed"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenGorm(context.Background(), database.SQLConfig{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, gormdb.Migrate(db))
	t.Cleanup(func() { _ = database.CloseGorm(db) })
	return db
}

func seededCatalog(t *testing.T, db *gorm.DB) (*catalog.Service, *gormdb.ProductStore) {
	t.Helper()
	store := gormdb.NewProductStore(db)
	svc := catalog.NewService(store, nil)
	for _, req := range seed.Products() {
		_, err := svc.CreateProduct(context.Background(), req)
		require.NoError(t, err)
	}
	return svc, store
}

func names(items []models.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}

func TestProductStore(t *testing.T) {
	ctx := context.Background()

	t.Run("FilterByCategory_PagesWithTotals", func(t *testing.T) {
		svc, _ := seededCatalog(t, openDB(t))
		lo, hi := decimal.NewFromInt(40), decimal.NewFromInt(70)

		page, err := svc.FilterByCategory(ctx, "", &lo, &hi, 0, 2)
		require.NoError(t, err)
		require.Equal(t, []string{"Standard AAC Block", "Jumbo AAC Block"}, names(page.Products))
		require.Equal(t, int64(3), page.TotalItems)
		require.Equal(t, 2, page.TotalPages)
	})

	t.Run("SortProducts_PageBeyondAnyOffset", func(t *testing.T) {
		svc, _ := seededCatalog(t, openDB(t))

		page, err := svc.SortProducts(ctx, catalog.SortNewest, 768614336404564651, 12)
		require.NoError(t, err)
		require.Empty(t, page.Products)
		require.Equal(t, int64(5), page.TotalItems)
		require.Equal(t, 768614336404564651, page.CurrentPage)
	})

	t.Run("Find_NegativeOffsetIsEmpty", func(t *testing.T) {
		_, store := seededCatalog(t, openDB(t))

		q := catalog.Build(catalog.Criteria{})
		q.Offset, q.Limit = -12, 12
		items, total, err := store.Find(ctx, q)
		require.NoError(t, err)
		require.Empty(t, items)
		require.Equal(t, int64(5), total)
	})

	t.Run("AdvancedSearch_KeywordCategorySort", func(t *testing.T) {
		svc, _ := seededCatalog(t, openDB(t))

		page, err := svc.AdvancedSearch(ctx, catalog.SearchParams{
			Keyword: "BLOCK", Category: "Specialty", SortKey: catalog.SortPriceDesc, Size: 10,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"U-Shape AAC Block", "Lintel AAC Block"}, names(page.Products))
		require.True(t, page.Products[1].PricePerUnit.Equal(decimal.NewFromInt(50)))
	})

	t.Run("SearchByKeyword_TreatsWildcardsLiterally", func(t *testing.T) {
		svc, _ := seededCatalog(t, openDB(t))

		items, err := svc.SearchByKeyword(ctx, "lintel")
		require.NoError(t, err)
		require.Equal(t, []string{"Lintel AAC Block"}, names(items))

		items, err = svc.SearchByKeyword(ctx, "%")
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("IncrementViewCount_ConcurrentUpdatesAreAtomic", func(t *testing.T) {
		svc, store := seededCatalog(t, openDB(t))

		const viewers = 20
		var wg sync.WaitGroup
		errs := make(chan error, viewers)
		for range viewers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.ViewProduct(ctx, 1)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		p, err := store.Get(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, int64(viewers), p.ViewCount)

		_, err = store.IncrementViewCount(ctx, 404)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Update_LeavesViewCountAlone", func(t *testing.T) {
		svc, store := seededCatalog(t, openDB(t))
		_, err := svc.ViewProduct(ctx, 2)
		require.NoError(t, err)

		category := ""
		_, err = svc.UpdateProduct(ctx, 2, models.ProductPatch{Category: &category})
		require.NoError(t, err)

		p, err := store.Get(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, int64(1), p.ViewCount)
		require.Empty(t, p.Category)

		cats, err := svc.Categories(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"Construction", "Specialty"}, cats)
	})

	t.Run("DecrementStock_GuardsAvailability", func(t *testing.T) {
		_, store := seededCatalog(t, openDB(t))

		require.NoError(t, store.DecrementStock(ctx, 4, 150))
		require.ErrorIs(t, store.DecrementStock(ctx, 4, 51), models.ErrInsufficientStock)
		require.ErrorIs(t, store.DecrementStock(ctx, 99, 1), models.ErrNotFound)
		require.NoError(t, store.RestoreStock(ctx, 4, 150))

		p, err := store.Get(ctx, 4)
		require.NoError(t, err)
		require.Equal(t, 200, p.StockQuantity)
	})
}

func TestUserStoreAndBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("Create_RejectsDuplicates", func(t *testing.T) {
		users := gormdb.NewUserStore(openDB(t))

		u := &models.User{Username: "testuser1", Email: "testuser1@example.com", Password: "x", Role: models.RoleAdmin, Enabled: true}
		require.NoError(t, users.Create(ctx, u))
		require.NotZero(t, u.ID)

		dup := &models.User{Username: "other", Email: "TESTUSER1@example.com", Password: "x", Role: models.RoleUser}
		require.ErrorIs(t, users.Create(ctx, dup), models.ErrConflict)

		found, err := users.FindByUsername(ctx, "testuser1")
		require.NoError(t, err)
		require.True(t, found.IsAdmin())

		found.Enabled = false
		require.NoError(t, users.Update(ctx, found))
		again, err := users.Get(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, again.Enabled)

		n, err := users.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	})

	t.Run("Blacklist_ExpiresTokens", func(t *testing.T) {
		bl := gormdb.NewBlacklist(openDB(t))

		require.NoError(t, bl.Add(ctx, "live", time.Now().Add(time.Hour)))
		require.NoError(t, bl.Add(ctx, "dead", time.Now().Add(-time.Hour)))
		require.NoError(t, bl.Add(ctx, "live", time.Now().Add(2*time.Hour)))

		ok, err := bl.Contains(ctx, "live")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = bl.Contains(ctx, "dead")
		require.NoError(t, err)
		require.False(t, ok)

		purged, err := bl.Purge(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), purged)
	})
}

func TestOrderStore(t *testing.T) {
	ctx := context.Background()
	orders := gormdb.NewOrderStore(openDB(t))

	o := &models.Order{
		OrderDate: time.Now().UTC(), ProductID: 1, Quantity: 2,
		TotalAmount: decimal.NewFromInt(90), CustomerName: "Alice", Status: models.StatusNew, UserID: 7,
	}
	require.NoError(t, orders.Create(ctx, o))
	require.NoError(t, orders.Create(ctx, &models.Order{
		OrderDate: time.Now().UTC(), ProductID: 1, Quantity: 1,
		TotalAmount: decimal.NewFromInt(45), CustomerName: "Bob", Status: models.StatusNew, UserID: 8,
	}))

	mine, err := orders.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	all, err := orders.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	o.Status = models.StatusPaid
	require.NoError(t, orders.Update(ctx, o))
	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, got.Status)

	require.NoError(t, orders.Delete(ctx, o.ID))
	require.ErrorIs(t, orders.Delete(ctx, o.ID), models.ErrNotFound)
	require.ErrorIs(t, orders.Update(ctx, o), models.ErrNotFound)
}
