// Package catalog implements product search, filtering, sorting, pagination and
// view tracking on top of a pluggable Store.
package catalog

import (
	"context"
	"sort"
	"strconv"
	"time"

	"blockflow/events"
	"blockflow/logger"
	"blockflow/models"

	"github.com/shopspring/decimal"
)

// Store is the persistence the catalog needs. Implementations must make
// IncrementViewCount a single atomic update on the store side.
type Store interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id int64) (*models.Product, error)
	// Update persists the mutable fields of p. ViewCount and CreatedAt are left alone.
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	// Find returns the page of matches selected by q together with the total match count.
	Find(ctx context.Context, q Query) ([]models.Product, int64, error)
	// IncrementViewCount adds one to the view count and returns the new value.
	IncrementViewCount(ctx context.Context, id int64) (int64, error)
	Categories(ctx context.Context) ([]string, error)
}

type Service struct {
	store  Store
	events events.Publisher
	now    func() time.Time
}

func NewService(store Store, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{store: store, events: publisher, now: time.Now}
}

// SearchParams are the inputs of AdvancedSearch.
type SearchParams struct {
	Keyword  string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortKey  string
	Page     int
	Size     int
}

// SearchByKeyword returns every product whose name or description contains
// keyword, ignoring case. A blank keyword returns the whole catalog.
func (s *Service) SearchByKeyword(ctx context.Context, keyword string) ([]models.Product, error) {
	q := Build(Criteria{Keyword: keyword})
	items, _, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, &models.QueryError{Op: "search", Err: err}
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

// Search is SearchByKeyword cut into one page in memory.
func (s *Service) Search(ctx context.Context, keyword string, page, size int) (models.Page, error) {
	if err := validatePaging(page, size); err != nil {
		return models.Page{}, err
	}
	all, err := s.SearchByKeyword(ctx, keyword)
	if err != nil {
		return models.Page{}, err
	}
	return Paginate(all, page, size), nil
}

// FilterByCategory pages through products in [minPrice, maxPrice], restricted
// to category when one is given, in ascending id order.
func (s *Service) FilterByCategory(ctx context.Context, category string, minPrice, maxPrice *decimal.Decimal, page, size int) (models.Page, error) {
	q := Build(Criteria{Category: category, MinPrice: minPrice, MaxPrice: maxPrice})
	return s.findPage(ctx, "filter", q, page, size)
}

// SortProducts pages through the whole catalog ordered by sortKey.
func (s *Service) SortProducts(ctx context.Context, sortKey string, page, size int) (models.Page, error) {
	q := Build(Criteria{}).WithSort(SortFor(sortKey))
	return s.findPage(ctx, "sort", q, page, size)
}

// AdvancedSearch combines keyword, category, price range and sort key.
func (s *Service) AdvancedSearch(ctx context.Context, p SearchParams) (models.Page, error) {
	q := Build(Criteria{
		Keyword:  p.Keyword,
		Category: p.Category,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
	}).WithSort(SortFor(p.SortKey))
	return s.findPage(ctx, "advanced search", q, p.Page, p.Size)
}

func (s *Service) findPage(ctx context.Context, op string, q Query, page, size int) (models.Page, error) {
	if err := validatePaging(page, size); err != nil {
		return models.Page{}, err
	}
	if page > maxPage(size) {
		// no store can hold that many rows, so only the total is needed
		_, total, err := s.store.Find(ctx, q.WithPage(0, 1))
		if err != nil {
			logger.Warn(ctx, "catalog query failed", "op", op, "error", err)
			return models.Page{}, &models.QueryError{Op: op, Err: err}
		}
		return NewPage(nil, page, size, total), nil
	}

	items, total, err := s.store.Find(ctx, q.WithPage(page, size))
	if err != nil {
		logger.Warn(ctx, "catalog query failed", "op", op, "error", err)
		return models.Page{}, &models.QueryError{Op: op, Err: err}
	}
	return NewPage(items, page, size, total), nil
}

// GetProduct returns a product without counting a view.
func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.Get(ctx, id)
}

// ViewProduct returns a product and records one view of it.
func (s *Service) ViewProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.store.IncrementViewCount(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ViewCount = views

	s.publish(ctx, events.ProductViewed, p.ID, map[string]interface{}{
		"productId": p.ID,
		"viewCount": views,
	})
	return p, nil
}

// ListProducts returns the whole catalog ordered by name.
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.listByName(ctx, false)
}

// AvailableProducts returns the products that still have stock, ordered by name.
func (s *Service) AvailableProducts(ctx context.Context) ([]models.Product, error) {
	return s.listByName(ctx, true)
}

func (s *Service) listByName(ctx context.Context, inStock bool) ([]models.Product, error) {
	q := Build(Criteria{}).WithSort(Order{Field: FieldName})
	q.InStock = inStock
	items, _, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, &models.QueryError{Op: "list", Err: err}
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

// Categories returns the distinct assigned categories in ascending order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return nil, &models.QueryError{Op: "categories", Err: err}
	}
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		if c != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	p, err := req.ToProduct(s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)

	s.publish(ctx, events.ProductCreated, p.ID, p)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := models.MergeProduct(*current, patch)
	if err := models.Validate(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, &next); err != nil {
		return nil, err
	}
	logger.Info(ctx, "product updated", "id", id)

	s.publish(ctx, events.ProductUpdated, id, next)
	return &next, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "product deleted", "id", id)

	s.publish(ctx, events.ProductDeleted, id, map[string]int64{"productId": id})
	return nil
}

// CountProducts reports how many products exist.
func (s *Service) CountProducts(ctx context.Context) (int64, error) {
	_, total, err := s.store.Find(ctx, Build(Criteria{}).WithPage(0, 1))
	return total, err
}

func (s *Service) publish(ctx context.Context, eventType string, id int64, payload interface{}) {
	if err := s.events.Publish(ctx, eventType, strconv.FormatInt(id, 10), payload); err != nil {
		logger.Warn(ctx, "event not published", "type", eventType, "id", id, "error", err)
	}
}
