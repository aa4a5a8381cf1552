package catalog

import (
	"strings"

	"blockflow/models"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is used when a caller does not ask for a page size.
const DefaultPageSize = 12

// MaxPrice stands in for an absent upper price bound. It is above anything a
// decimal(17,2) price column can hold.
var MaxPrice = decimal.New(1, 15)

// Sort keys accepted by the sort and advanced search paths.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortPopular   = "popular"
	SortDefault   = "id"
)

type SortField string

const (
	FieldID        SortField = "id"
	FieldName      SortField = "name"
	FieldPrice     SortField = "price"
	FieldCreatedAt SortField = "createdAt"
	FieldViewCount SortField = "viewCount"
)

type Order struct {
	Field SortField
	Desc  bool
}

// SortFor maps a sort key onto an ordering. Unknown keys fall back to id descending.
func SortFor(key string) Order {
	switch key {
	case SortPriceAsc:
		return Order{Field: FieldPrice}
	case SortPriceDesc:
		return Order{Field: FieldPrice, Desc: true}
	case SortNewest:
		return Order{Field: FieldCreatedAt, Desc: true}
	case SortPopular:
		return Order{Field: FieldViewCount, Desc: true}
	default:
		return Order{Field: FieldID, Desc: true}
	}
}

// Criteria are the optional predicates a caller may supply.
type Criteria struct {
	Keyword  string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Query is a fully resolved catalog query. Stores translate it into their own
// dialect; Matches and Less define its semantics.
type Query struct {
	// Keyword is lower-cased; empty means no keyword predicate.
	Keyword  string
	Category string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	InStock  bool
	Sort     Order
	Offset   int
	// Limit of zero returns every match.
	Limit int
}

// Build resolves criteria into a query. The price range is always present;
// keyword and category are added only when non-blank.
func Build(c Criteria) Query {
	q := Query{
		Keyword:  strings.ToLower(strings.TrimSpace(c.Keyword)),
		Category: strings.TrimSpace(c.Category),
		MinPrice: decimal.Zero,
		MaxPrice: MaxPrice,
		Sort:     Order{Field: FieldID},
	}
	if c.MinPrice != nil {
		q.MinPrice = clampPrice(*c.MinPrice)
	}
	if c.MaxPrice != nil {
		q.MaxPrice = clampPrice(*c.MaxPrice)
	}
	return q
}

// clampPrice keeps a bound within [-MaxPrice, MaxPrice]. No stored price lies
// outside that range, so clamping never changes which products match.
func clampPrice(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(MaxPrice) {
		return MaxPrice
	}
	if neg := MaxPrice.Neg(); d.LessThan(neg) {
		return neg
	}
	return d
}

func (q Query) WithSort(o Order) Query {
	q.Sort = o
	return q
}

func (q Query) WithPage(page, size int) Query {
	q.Offset = page * size
	q.Limit = size
	return q
}

func (q Query) HasKeyword() bool { return q.Keyword != "" }

func (q Query) HasCategory() bool { return q.Category != "" }

// Matches reports whether p satisfies every predicate of q.
func (q Query) Matches(p models.Product) bool {
	if p.PricePerUnit.LessThan(q.MinPrice) || p.PricePerUnit.GreaterThan(q.MaxPrice) {
		return false
	}
	if q.HasCategory() && p.Category != q.Category {
		return false
	}
	if q.InStock && p.StockQuantity <= 0 {
		return false
	}
	if q.HasKeyword() {
		return strings.Contains(strings.ToLower(p.Name), q.Keyword) ||
			strings.Contains(strings.ToLower(p.Description), q.Keyword)
	}
	return true
}

// Less orders a before b under q.Sort, breaking ties by id in the same direction.
func (q Query) Less(a, b models.Product) bool {
	cmp := 0
	switch q.Sort.Field {
	case FieldPrice:
		cmp = a.PricePerUnit.Cmp(b.PricePerUnit)
	case FieldCreatedAt:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	case FieldViewCount:
		cmp = compareInt(a.ViewCount, b.ViewCount)
	case FieldName:
		cmp = strings.Compare(a.Name, b.Name)
	}
	if cmp == 0 {
		cmp = compareInt(a.ID, b.ID)
	}
	if q.Sort.Desc {
		return cmp > 0
	}
	return cmp < 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
