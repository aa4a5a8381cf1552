// Package seed loads the starter users and AAC block catalog into empty stores.
package seed

import (
	"context"
	"fmt"

	"blockflow/accounts"
	"blockflow/catalog"
	"blockflow/logger"
	"blockflow/models"

	"github.com/shopspring/decimal"
)

const defaultPassword = "TestPass123"

type starterUser struct {
	req  models.RegisterRequest
	role models.Role
}

func users() []starterUser {
	return []starterUser{
		{
			req: models.RegisterRequest{
				Username: "testuser1", Email: "testuser1@example.com", Password: defaultPassword,
				FirstName: "Test", LastName: "User1",
			},
			role: models.RoleAdmin,
		},
		{
			req: models.RegisterRequest{
				Username: "testuser2", Email: "testuser2@example.com", Password: defaultPassword,
				FirstName: "Test", LastName: "User2",
			},
			role: models.RoleUser,
		},
	}
}

// Products is the starter catalog.
func Products() []models.ProductRequest {
	return []models.ProductRequest{
		product("Standard AAC Block", "600x200x100mm", "45.00", 500, "Standard block for general construction", "7.50", "Construction"),
		product("Jumbo AAC Block", "600x200x150mm", "65.00", 300, "Larger block for load bearing walls", "11.00", "Construction"),
		product("Partition AAC Block", "600x200x75mm", "35.00", 400, "Thinner block for partition walls", "5.50", "Construction"),
		product("U-Shape AAC Block", "600x200x200mm", "80.00", 200, "U-shaped block for bond beams", "14.00", "Specialty"),
		product("Lintel AAC Block", "600x150x100mm", "50.00", 350, "Block for door and window lintels", "6.00", "Specialty"),
	}
}

func product(name, dims, price string, stock int, desc, weight, category string) models.ProductRequest {
	p := decimal.RequireFromString(price)
	w := decimal.RequireFromString(weight)
	return models.ProductRequest{
		Name:          name,
		Dimensions:    dims,
		PricePerUnit:  &p,
		StockQuantity: &stock,
		Description:   desc,
		Weight:        &w,
		Category:      category,
	}
}

// Run seeds users and products, each only when its store is empty.
func Run(ctx context.Context, products *catalog.Service, accts *accounts.Service) error {
	userCount, err := accts.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		for _, su := range users() {
			u, err := accts.Register(ctx, su.req)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", su.req.Username, err)
			}
			if su.role != u.Role {
				if _, err := accts.SetRole(ctx, u.ID, su.role); err != nil {
					return fmt.Errorf("seed role for %s: %w", u.Username, err)
				}
			}
		}
		logger.Info(ctx, "starter users created")
	}

	productCount, err := products.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if productCount > 0 {
		logger.Info(ctx, "products already exist, skipping seed", "count", productCount)
		return nil
	}
	for _, req := range Products() {
		if _, err := products.CreateProduct(ctx, req); err != nil {
			return fmt.Errorf("seed product %s: %w", req.Name, err)
		}
	}
	logger.Info(ctx, "starter catalog created")
	return nil
}
