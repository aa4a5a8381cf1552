package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string          `json:"name" gorm:"type:varchar(100);not null;index" validate:"required,max=100"`
	Description   string          `json:"description" gorm:"type:varchar(500)" validate:"max=500"`
	Category      string          `json:"category,omitempty" gorm:"type:varchar(100);index" validate:"max=100"`
	Dimensions    string          `json:"dimensions" gorm:"type:varchar(100);not null" validate:"required"`
	PricePerUnit  decimal.Decimal `json:"pricePerUnit" gorm:"type:decimal(17,2);not null;index" validate:"gt=0"`
	StockQuantity int             `json:"stockQuantity" gorm:"not null;default:0" validate:"gte=0"`
	Weight        decimal.Decimal `json:"weight" gorm:"type:decimal(12,2);not null" validate:"gt=0"`
	ViewCount     int64           `json:"viewCount" gorm:"not null;default:0;index"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// ProductRequest is the create payload.
type ProductRequest struct {
	Name          string           `json:"name" validate:"required,max=100"`
	Dimensions    string           `json:"dimensions" validate:"required"`
	PricePerUnit  *decimal.Decimal `json:"pricePerUnit" validate:"required,gt=0"`
	StockQuantity *int             `json:"stockQuantity" validate:"required,gte=0"`
	Description   string           `json:"description" validate:"max=500"`
	Weight        *decimal.Decimal `json:"weight" validate:"required,gt=0"`
	Category      string           `json:"category" validate:"max=100"`
}

// ToProduct validates the request and builds a new, unsaved product.
func (r ProductRequest) ToProduct(now time.Time) (*Product, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Dimensions = strings.TrimSpace(r.Dimensions)
	r.Category = strings.TrimSpace(r.Category)
	// money and weight are stored with two decimals, so bounds are checked on the stored value
	r.PricePerUnit = round2(r.PricePerUnit)
	r.Weight = round2(r.Weight)
	if err := Validate(r); err != nil {
		return nil, err
	}

	return &Product{
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		Dimensions:    r.Dimensions,
		PricePerUnit:  *r.PricePerUnit,
		StockQuantity: *r.StockQuantity,
		Weight:        *r.Weight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func round2(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(2)
	return &r
}

// ProductPatch holds the optional overrides of a partial update. Nil fields keep the current value.
type ProductPatch struct {
	Name          *string          `json:"name"`
	Dimensions    *string          `json:"dimensions"`
	PricePerUnit  *decimal.Decimal `json:"pricePerUnit"`
	StockQuantity *int             `json:"stockQuantity"`
	Description   *string          `json:"description"`
	Weight        *decimal.Decimal `json:"weight"`
	Category      *string          `json:"category"`
}

// MergeProduct returns current with every non-nil field of patch applied.
// Identity, view count and creation time are never touched.
func MergeProduct(current Product, patch ProductPatch) Product {
	next := current
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Dimensions != nil {
		next.Dimensions = strings.TrimSpace(*patch.Dimensions)
	}
	if patch.PricePerUnit != nil {
		next.PricePerUnit = patch.PricePerUnit.Round(2)
	}
	if patch.StockQuantity != nil {
		next.StockQuantity = *patch.StockQuantity
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Weight != nil {
		next.Weight = patch.Weight.Round(2)
	}
	if patch.Category != nil {
		next.Category = strings.TrimSpace(*patch.Category)
	}
	return next
}

// Page is the envelope returned by paginated catalog reads.
type Page struct {
	Products     []Product `json:"products"`
	CurrentPage  int       `json:"currentPage"`
	ItemsPerPage int       `json:"itemsPerPage"`
	TotalItems   int64     `json:"totalItems"`
	TotalPages   int       `json:"totalPages"`
}
