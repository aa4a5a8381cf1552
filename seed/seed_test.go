package seed

import (
	"context"
	"testing"
	"time"

	"blockflow/accounts"
	"blockflow/catalog"
	"blockflow/models"
	"blockflow/repository/memory"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	products := catalog.NewService(memory.NewProductStore(), nil)
	accts := accounts.NewService(memory.NewUserStore(), memory.NewBlacklist(), accounts.NewTokenIssuer("seed-secret", time.Hour))

	require.NoError(t, Run(ctx, products, accts))
	require.NoError(t, Run(ctx, products, accts))

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(len(Products())), count)

	users, err := accts.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	roles := map[string]models.Role{}
	for _, u := range users {
		roles[u.Username] = u.Role
	}
	require.Equal(t, models.RoleAdmin, roles["testuser1"])
	require.Equal(t, models.RoleUser, roles["testuser2"])

	resp, err := accts.Login(ctx, models.LoginRequest{Username: "testuser1", Password: "TestPass123"})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, resp.Role)
}
