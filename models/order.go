package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNew       OrderStatus = "NEW"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusRefunded  OrderStatus = "REFUNDED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusNew:       {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusRefunded},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// CanTransition reports whether an order in status from may move to status to.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID           int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderDate    time.Time       `json:"orderDate" gorm:"not null"`
	ProductID    int64           `json:"productId" gorm:"not null;index"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	TotalAmount  decimal.Decimal `json:"totalAmount" gorm:"type:decimal(17,2)"`
	CustomerName string          `json:"customerName" gorm:"type:varchar(100);not null"`
	Status       OrderStatus     `json:"status" gorm:"type:varchar(20);not null"`
	UserID       int64           `json:"userId" gorm:"index"`
}

func (Order) TableName() string { return "orders" }

type OrderRequest struct {
	ProductID    int64  `json:"productId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	CustomerName string `json:"customerName" validate:"required,max=100"`
}

func (r *OrderRequest) Normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
}

type OrderPatch struct {
	Quantity     *int         `json:"quantity" validate:"omitempty,min=1"`
	CustomerName *string      `json:"customerName" validate:"omitempty,max=100"`
	Status       *OrderStatus `json:"status" validate:"omitempty,oneof=NEW PAID SHIPPED DELIVERED CANCELLED REFUNDED"`
}
