// Package accounts registers users, issues tokens and performs admin actions on accounts.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blockflow/logger"
	"blockflow/models"

	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// Blacklist holds revoked tokens until they expire.
type Blacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

type Service struct {
	users     Store
	blacklist Blacklist
	tokens    *TokenIssuer
	cost      int
}

func NewService(users Store, blacklist Blacklist, tokens *TokenIssuer) *Service {
	return &Service{users: users, blacklist: blacklist, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleUser,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user registered", "id", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, models.ErrUnauthorized
	}
	if !u.Enabled {
		return nil, models.ErrForbidden
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token:     token,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}, nil
}

// Logout revokes token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	return s.blacklist.Add(ctx, token, claims.ExpiresAt.Time)
}

// Authenticate verifies token and returns its claims. Revoked tokens and
// tokens of disabled accounts are rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !u.Enabled {
		return nil, models.ErrForbidden
	}
	// role changes take effect without a new login
	claims.Role = u.Role
	return claims, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.users.Get(ctx, id)
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func (s *Service) SetRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	return s.modify(ctx, id, func(u *models.User) { u.Role = role })
}

func (s *Service) SetEnabled(ctx context.Context, id int64, enabled bool) (*models.User, error) {
	return s.modify(ctx, id, func(u *models.User) { u.Enabled = enabled })
}

func (s *Service) modify(ctx context.Context, id int64, fn func(*models.User)) (*models.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(u)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user updated", "id", u.ID, "role", u.Role, "enabled", u.Enabled)
	return u, nil
}
