package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"blockflow/models"
)

type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[int64]models.User)}
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return models.ErrConflict
		}
	}
	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) Get(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *UserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return models.ErrNotFound
	}
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *UserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// Blacklist remembers revoked tokens until they expire.
type Blacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewBlacklist() *Blacklist {
	return &Blacklist{tokens: make(map[string]time.Time)}
}

func (b *Blacklist) Add(_ context.Context, token string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = expiresAt
	return nil
}

func (b *Blacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(b.tokens, token)
		return false, nil
	}
	return true, nil
}
