package catalog

import (
	"testing"
	"time"

	"blockflow/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuery(t *testing.T) {
	block := models.Product{
		ID:            7,
		Name:          "Lintel AAC Block",
		Description:   "Block for door and window lintels",
		Category:      "Specialty",
		PricePerUnit:  dec("50.00"),
		StockQuantity: 3,
	}

	t.Run("Build_DefaultsPriceRangeAndOrder", func(t *testing.T) {
		q := Build(Criteria{Keyword: "  LinTel ", Category: " Specialty "})
		require.Equal(t, "lintel", q.Keyword)
		require.Equal(t, "Specialty", q.Category)
		require.True(t, q.MinPrice.Equal(decimal.Zero))
		require.True(t, q.MaxPrice.Equal(MaxPrice))
		require.Equal(t, Order{Field: FieldID}, q.Sort)
		require.Zero(t, q.Limit)
	})

	t.Run("Build_BlankKeywordIsNoPredicate", func(t *testing.T) {
		q := Build(Criteria{Keyword: "   "})
		require.False(t, q.HasKeyword())
		require.False(t, q.HasCategory())
	})

	t.Run("Build_ClampsOutOfRangePrices", func(t *testing.T) {
		huge, tiny := dec("1e7000"), dec("-1e7000")
		q := Build(Criteria{MinPrice: &tiny, MaxPrice: &huge})
		require.True(t, q.MaxPrice.Equal(MaxPrice))
		require.True(t, q.MinPrice.Equal(MaxPrice.Neg()))
		require.True(t, q.Matches(block))

		low := dec("49.99")
		require.True(t, Build(Criteria{MinPrice: &low}).MinPrice.Equal(low))
	})

	t.Run("WithPage_ComputesOffset", func(t *testing.T) {
		q := Build(Criteria{}).WithPage(3, 12)
		require.Equal(t, 36, q.Offset)
		require.Equal(t, 12, q.Limit)
	})

	t.Run("Matches_KeywordInNameOrDescription", func(t *testing.T) {
		require.True(t, Build(Criteria{Keyword: "LINTEL"}).Matches(block))
		require.True(t, Build(Criteria{Keyword: "window"}).Matches(block))
		require.False(t, Build(Criteria{Keyword: "jumbo"}).Matches(block))
	})

	t.Run("Matches_PriceBoundsAreInclusive", func(t *testing.T) {
		lo, hi := dec("50"), dec("50")
		require.True(t, Build(Criteria{MinPrice: &lo, MaxPrice: &hi}).Matches(block))

		above := dec("50.01")
		require.False(t, Build(Criteria{MinPrice: &above}).Matches(block))
	})

	t.Run("Matches_CategoryIsExact", func(t *testing.T) {
		require.True(t, Build(Criteria{Category: "Specialty"}).Matches(block))
		require.False(t, Build(Criteria{Category: "specialty"}).Matches(block))
	})

	t.Run("Matches_InStock", func(t *testing.T) {
		q := Build(Criteria{})
		q.InStock = true
		require.True(t, q.Matches(block))

		empty := block
		empty.StockQuantity = 0
		require.False(t, q.Matches(empty))
	})

	t.Run("SortFor_MapsKeys", func(t *testing.T) {
		require.Equal(t, Order{Field: FieldPrice}, SortFor(SortPriceAsc))
		require.Equal(t, Order{Field: FieldPrice, Desc: true}, SortFor(SortPriceDesc))
		require.Equal(t, Order{Field: FieldCreatedAt, Desc: true}, SortFor(SortNewest))
		require.Equal(t, Order{Field: FieldViewCount, Desc: true}, SortFor(SortPopular))
		require.Equal(t, Order{Field: FieldID, Desc: true}, SortFor(""))
		require.Equal(t, Order{Field: FieldID, Desc: true}, SortFor("cheapest"))
	})

	t.Run("Less_BreaksTiesByID", func(t *testing.T) {
		now := time.Now()
		a := models.Product{ID: 1, PricePerUnit: dec("10"), CreatedAt: now}
		b := models.Product{ID: 2, PricePerUnit: dec("10"), CreatedAt: now}

		asc := Build(Criteria{}).WithSort(SortFor(SortPriceAsc))
		require.True(t, asc.Less(a, b))
		require.False(t, asc.Less(b, a))

		desc := Build(Criteria{}).WithSort(SortFor(SortNewest))
		require.True(t, desc.Less(b, a))
	})
}

func TestPaging(t *testing.T) {
	t.Run("TotalPages", func(t *testing.T) {
		require.Equal(t, 0, TotalPages(0, 12))
		require.Equal(t, 1, TotalPages(12, 12))
		require.Equal(t, 2, TotalPages(13, 12))
		require.Equal(t, 2, TotalPages(3, 2))
	})

	t.Run("Bounds_ClampsPastTheEnd", func(t *testing.T) {
		start, end := Bounds(5, 1, 2)
		require.Equal(t, 2, start)
		require.Equal(t, 4, end)

		start, end = Bounds(5, 2, 2)
		require.Equal(t, 4, start)
		require.Equal(t, 5, end)

		start, end = Bounds(5, 9, 2)
		require.Equal(t, 5, start)
		require.Equal(t, 5, end)

		start, end = Bounds(5, 1<<40, 1<<30)
		require.Equal(t, 5, start)
		require.Equal(t, 5, end)
	})

	t.Run("Paginate_ReportsTotals", func(t *testing.T) {
		all := []models.Product{{ID: 1}, {ID: 2}, {ID: 3}}

		page := Paginate(all, 1, 2)
		require.Len(t, page.Products, 1)
		require.Equal(t, int64(3), page.Products[0].ID)
		require.Equal(t, 1, page.CurrentPage)
		require.Equal(t, 2, page.ItemsPerPage)
		require.Equal(t, int64(3), page.TotalItems)
		require.Equal(t, 2, page.TotalPages)

		empty := Paginate(all, 5, 2)
		require.NotNil(t, empty.Products)
		require.Empty(t, empty.Products)
		require.Equal(t, int64(3), empty.TotalItems)
	})

	t.Run("ValidatePaging_RejectsBadInput", func(t *testing.T) {
		require.NoError(t, validatePaging(0, 1))

		err := validatePaging(-1, 0)
		require.Error(t, err)
		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Contains(t, ve.Fields, "page")
		require.Contains(t, ve.Fields, "limit")
	})
}
