// Package memory keeps every store in process memory. It backs the "memory"
// database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"blockflow/catalog"
	"blockflow/models"
)

type ProductStore struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{nextID: 1, products: make(map[int64]models.Product)}
}

func (s *ProductStore) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = *p
	return nil
}

func (s *ProductStore) Get(_ context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *ProductStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[p.ID]
	if !ok {
		return models.ErrNotFound
	}
	next := *p
	next.ViewCount = current.ViewCount
	next.CreatedAt = current.CreatedAt
	s.products[p.ID] = next
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ProductStore) Find(_ context.Context, q catalog.Query) ([]models.Product, int64, error) {
	s.mu.RLock()
	items := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if q.Matches(p) {
			items = append(items, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return q.Less(items[i], items[j]) })

	total := int64(len(items))
	if q.Limit > 0 {
		start, end := len(items), len(items)
		if q.Offset >= 0 && q.Offset < len(items) {
			start = q.Offset
			end = q.Offset + min(q.Limit, len(items)-q.Offset)
		}
		items = items[start:end]
	}
	return items, total, nil
}

func (s *ProductStore) IncrementViewCount(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	p.ViewCount++
	s.products[id] = p
	return p.ViewCount, nil
}

func (s *ProductStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range s.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// DecrementStock removes qty units if at least that many are left.
func (s *ProductStore) DecrementStock(_ context.Context, id int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.StockQuantity < qty {
		return models.ErrInsufficientStock
	}
	p.StockQuantity -= qty
	s.products[id] = p
	return nil
}

func (s *ProductStore) RestoreStock(_ context.Context, id int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.ErrNotFound
	}
	p.StockQuantity += qty
	s.products[id] = p
	return nil
}
