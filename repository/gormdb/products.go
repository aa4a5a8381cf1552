// Package gormdb stores products, users, orders and revoked tokens in a SQL
// database through GORM.
package gormdb

import (
	"context"
	"errors"
	"fmt"

	"blockflow/catalog"
	"blockflow/models"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the stores use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.User{}, &models.Order{}, &revokedToken{})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}

type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *ProductStore) Get(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Update writes the mutable columns only, so a concurrent view is never overwritten.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	res := s.db.WithContext(ctx).Model(&models.Product{ID: p.ID}).
		Select("name", "description", "category", "dimensions", "price_per_unit", "stock_quantity", "weight", "updated_at").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

var sortColumns = map[catalog.SortField]string{
	catalog.FieldID:        "id",
	catalog.FieldName:      "name",
	catalog.FieldPrice:     "price_per_unit",
	catalog.FieldCreatedAt: "created_at",
	catalog.FieldViewCount: "view_count",
}

// matching applies the predicates of q. Price bounds are always present.
func matching(q catalog.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("price_per_unit BETWEEN ? AND ?", q.MinPrice, q.MaxPrice)
		if q.HasCategory() {
			db = db.Where("category = ?", q.Category)
		}
		if q.InStock {
			db = db.Where("stock_quantity > 0")
		}
		if q.HasKeyword() {
			like := "%" + escapeLike(q.Keyword) + "%"
			db = db.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like)
		}
		return db
	}
}

func ordering(o catalog.Order) string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	col, ok := sortColumns[o.Field]
	if !ok || col == "id" {
		return "id " + dir
	}
	return col + " " + dir + ", id " + dir
}

func (s *ProductStore) Find(ctx context.Context, q catalog.Query) ([]models.Product, int64, error) {
	var items []models.Product
	find := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(matching(q)).Order(ordering(q.Sort))
	if q.Limit > 0 {
		find = find.Offset(q.Offset).Limit(q.Limit)
	}
	// gorm ignores a negative offset, which would silently return the first page
	if q.Limit > 0 && q.Offset < 0 {
		items = []models.Product{}
	} else if err := find.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}

	total := int64(len(items))
	if q.Limit > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(matching(q)).Count(&total).Error; err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}
	return items, total, nil
}

// IncrementViewCount issues "view_count = view_count + 1" so the database serialises concurrent views.
func (s *ProductStore) IncrementViewCount(ctx context.Context, id int64) (int64, error) {
	var views int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return tx.Model(&models.Product{}).Select("view_count").Where("id = ?", id).Row().Scan(&views)
	})
	if err != nil {
		return 0, err
	}
	return views, nil
}

func (s *ProductStore) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().Order("category").Pluck("category", &out).Error
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return out, nil
}

func (s *ProductStore) DecrementStock(ctx context.Context, id int64, qty int) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return models.ErrInsufficientStock
	}
	return nil
}

func (s *ProductStore) RestoreStock(ctx context.Context, id int64, qty int) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("restore stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '!' {
			out = append(out, '!')
		}
		out = append(out, r)
	}
	return string(out)
}
