// Package orders places direct product orders and keeps product stock in step with them.
package orders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"blockflow/events"
	"blockflow/logger"
	"blockflow/models"

	"github.com/shopspring/decimal"
)

type Store interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id int64) (*models.Order, error)
	// List returns the orders of userID, or every order when userID is 0.
	List(ctx context.Context, userID int64) ([]models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id int64) error
}

// Stock is the slice of the product store an order needs.
type Stock interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
	DecrementStock(ctx context.Context, id int64, qty int) error
	RestoreStock(ctx context.Context, id int64, qty int) error
}

// Caller is the authenticated user acting on orders.
type Caller struct {
	UserID int64
	Admin  bool
}

type Service struct {
	orders Store
	stock  Stock
	events events.Publisher
	now    func() time.Time
}

func NewService(orders Store, stock Stock, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{orders: orders, stock: stock, events: publisher, now: time.Now}
}

// Create reserves stock for the order and stores it with status NEW.
func (s *Service) Create(ctx context.Context, caller Caller, req models.OrderRequest) (*models.Order, error) {
	req.Normalize()
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.stock.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.stock.DecrementStock(ctx, product.ID, req.Quantity); err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderDate:    s.now().UTC(),
		ProductID:    product.ID,
		Quantity:     req.Quantity,
		TotalAmount:  product.PricePerUnit.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2),
		CustomerName: req.CustomerName,
		Status:       models.StatusNew,
		UserID:       caller.UserID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if rerr := s.stock.RestoreStock(ctx, product.ID, req.Quantity); rerr != nil {
			logger.Error(ctx, "failed to restore stock", "product_id", product.ID, "error", rerr)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	logger.Info(ctx, "order created", "id", order.ID, "product_id", order.ProductID, "quantity", order.Quantity)
	if err := s.events.Publish(ctx, events.OrderCreated, strconv.FormatInt(order.ID, 10), order); err != nil {
		logger.Warn(ctx, "failed to publish order event", "id", order.ID, "error", err)
	}
	return order, nil
}

// List returns every order for admins and only the caller's own otherwise.
func (s *Service) List(ctx context.Context, caller Caller) ([]models.Order, error) {
	if caller.Admin {
		return s.orders.List(ctx, 0)
	}
	return s.orders.List(ctx, caller.UserID)
}

func (s *Service) Get(ctx context.Context, caller Caller, id int64) (*models.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Admin && o.UserID != caller.UserID {
		return nil, models.ErrForbidden
	}
	return o, nil
}

// Update applies patch to an order. Quantity changes move stock, and status
// changes must follow the order lifecycle. Only admins move an order forward.
func (s *Service) Update(ctx context.Context, caller Caller, id int64, patch models.OrderPatch) (*models.Order, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	o, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	next := *o

	if patch.Status != nil {
		// owners may only cancel; every other move goes through the admin status route
		if !caller.Admin && *patch.Status != o.Status && *patch.Status != models.StatusCancelled {
			return nil, models.ErrForbidden
		}
		if !models.CanTransition(o.Status, *patch.Status) {
			return nil, fmt.Errorf("%w: %s to %s", models.ErrInvalidTransition, o.Status, *patch.Status)
		}
		next.Status = *patch.Status
	}
	if patch.CustomerName != nil {
		next.CustomerName = *patch.CustomerName
	}

	stockDelta := 0
	if patch.Quantity != nil && *patch.Quantity != o.Quantity {
		if o.Status != models.StatusNew {
			return nil, models.NewValidationError("quantity", "can only change while the order is NEW")
		}
		stockDelta = *patch.Quantity - o.Quantity
		product, err := s.stock.Get(ctx, o.ProductID)
		if err != nil {
			return nil, err
		}
		next.Quantity = *patch.Quantity
		next.TotalAmount = product.PricePerUnit.Mul(decimal.NewFromInt(int64(next.Quantity))).Round(2)
	}
	if err := s.moveStock(ctx, o.ProductID, stockDelta); err != nil {
		return nil, err
	}

	// a cancelled or refunded order gives its units back
	released := next.Status != o.Status && (next.Status == models.StatusCancelled || next.Status == models.StatusRefunded)
	if err := s.orders.Update(ctx, &next); err != nil {
		if rerr := s.moveStock(ctx, o.ProductID, -stockDelta); rerr != nil {
			logger.Error(ctx, "failed to roll back stock", "product_id", o.ProductID, "error", rerr)
		}
		return nil, err
	}
	if released {
		if err := s.stock.RestoreStock(ctx, next.ProductID, next.Quantity); err != nil {
			logger.Error(ctx, "failed to release stock", "order_id", next.ID, "error", err)
		}
	}

	logger.Info(ctx, "order updated", "id", next.ID, "status", next.Status, "quantity", next.Quantity)
	return &next, nil
}

// Delete removes an order. Units of an order that never shipped go back to stock.
func (s *Service) Delete(ctx context.Context, caller Caller, id int64) error {
	o, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	if o.Status == models.StatusNew || o.Status == models.StatusPaid {
		if err := s.stock.RestoreStock(ctx, o.ProductID, o.Quantity); err != nil {
			logger.Error(ctx, "failed to release stock", "order_id", o.ID, "error", err)
		}
	}
	logger.Info(ctx, "order deleted", "id", id)
	return nil
}

func (s *Service) moveStock(ctx context.Context, productID int64, delta int) error {
	switch {
	case delta > 0:
		return s.stock.DecrementStock(ctx, productID, delta)
	case delta < 0:
		return s.stock.RestoreStock(ctx, productID, -delta)
	}
	return nil
}
