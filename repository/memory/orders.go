package memory

import (
	"context"
	"sort"
	"sync"

	"blockflow/models"
)

type OrderStore struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]models.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{nextID: 1, orders: make(map[int64]models.Order)}
}

func (s *OrderStore) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = s.nextID
	s.nextID++
	s.orders[o.ID] = *o
	return nil
}

func (s *OrderStore) Get(_ context.Context, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &o, nil
}

func (s *OrderStore) List(_ context.Context, userID int64) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Order{}
	for _, o := range s.orders {
		if userID == 0 || o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *OrderStore) Update(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return models.ErrNotFound
	}
	s.orders[o.ID] = *o
	return nil
}

func (s *OrderStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}
