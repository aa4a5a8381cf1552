package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blockflow/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		err := tx.Model(&models.User{}).
			Where("username = ? OR LOWER(email) = LOWER(?)", u.Username, u.Email).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return models.ErrConflict
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrConflict
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
}

func (s *UserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{ID: u.ID}).
		Select("email", "password", "first_name", "last_name", "role", "enabled").
		Updates(u)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

type revokedToken struct {
	Token     string    `gorm:"primaryKey;type:varchar(512)"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (revokedToken) TableName() string { return "blacklist_tokens" }

type Blacklist struct {
	db *gorm.DB
}

func NewBlacklist(db *gorm.DB) *Blacklist {
	return &Blacklist{db: db}
}

func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	row := revokedToken{Token: token, ExpiresAt: expiresAt.UTC(), CreatedAt: time.Now().UTC()}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	var n int64
	err := b.db.WithContext(ctx).Model(&revokedToken{}).
		Where("token = ? AND expires_at > ?", token, time.Now().UTC()).
		Count(&n).Error
	return n > 0, err
}

// Purge deletes tokens that have already expired.
func (b *Blacklist) Purge(ctx context.Context) (int64, error) {
	res := b.db.WithContext(ctx).Where("expires_at <= ?", time.Now().UTC()).Delete(&revokedToken{})
	return res.RowsAffected, res.Error
}
