//go:build integration
// +build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

func setupPostgres(t *testing.T) (string, func()) {
	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return connStr, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}
}

func TestPostgresStore(t *testing.T) {
	url, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	s, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.LoadInventory(ctx)
	require.ErrorIs(t, err, ErrNoInventory)

	require.NoError(t, s.SaveInventory(ctx, []model.InventoryEntry{{ProductID: "Nawabi", Stock: 10}, {ProductID: "Shahi", Stock: 10}}))
	require.NoError(t, s.Commit(ctx, sampleOrder("o1"), model.InventoryEntry{ProductID: "Nawabi", Stock: 7}))

	inv, err := s.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.InventoryEntry{{ProductID: "Nawabi", Stock: 7}, {ProductID: "Shahi", Stock: 10}}, inv)

	// Unknown product: the insert violates the foreign key and nothing is kept.
	bad := sampleOrder("o2")
	bad.ProductID = "Ghost"
	err = s.Commit(ctx, bad, model.InventoryEntry{ProductID: "Ghost", Stock: 1})
	require.ErrorIs(t, err, ErrPersistence)

	orders, err := s.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].OrderID)

	got, err := FindOrder(ctx, s, "o1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Customer.Name)
	_, err = FindOrder(ctx, s, "o2")
	require.ErrorIs(t, err, ErrOrderNotFound)

	require.NoError(t, s.SetStock(ctx, model.InventoryEntry{ProductID: "Shahi", Stock: 3}))
	require.ErrorIs(t, s.SetStock(ctx, model.InventoryEntry{ProductID: "Ghost", Stock: 3}), ErrPersistence)
}
