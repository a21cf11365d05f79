package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

func TestDefaultResolveByIDAndName(t *testing.T) {
	c := Default()
	p, ok := c.Resolve("Nawabi")
	require.True(t, ok)
	assert.Equal(t, "Nawabi", p.ProductID)

	p, ok = c.Resolve("makahan shahi")
	require.True(t, ok)
	assert.Equal(t, "Shahi", p.ProductID)

	_, ok = c.Resolve("Unknown")
	assert.False(t, ok)
}

func TestSeedKeepsCatalogOrder(t *testing.T) {
	seed := Default().Seed()
	require.Len(t, seed, 4)
	assert.Equal(t, []string{"Nawabi", "Shahi", "Sultaana", "Azaadi"}, Default().IDs())
	for _, e := range seed {
		assert.Equal(t, DefaultStock, e.Stock)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]model.Product{{ProductID: "a"}, {ProductID: "a"}})
	require.Error(t, err)
	_, err = New(nil)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	body := `default_stock: 5
products:
  - id: Nawabi
    name: Makahan Nawabi
    price: "199.50"
  - id: Shahi
    price: "10"
    stock: 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	c, err := Load(path, DefaultStock)
	require.NoError(t, err)
	assert.Equal(t, []model.InventoryEntry{{ProductID: "Nawabi", Stock: 5}, {ProductID: "Shahi", Stock: 3}}, c.Seed())
	assert.True(t, c.Prices()["Nawabi"].Equal(decimal.RequireFromString("199.5")))
	p, ok := c.Get("Shahi")
	require.True(t, ok)
	assert.Equal(t, "Shahi", p.Name)
}

func TestWithStock(t *testing.T) {
	c, err := Default().WithStock(2)
	require.NoError(t, err)
	for _, e := range c.Seed() {
		assert.Equal(t, 2, e.Stock)
	}
	assert.Equal(t, DefaultStock, Default().Seed()[0].Stock)
}

func TestWithStockRejectsNegative(t *testing.T) {
	c, err := Default().WithStock(-1)
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestLoadYAMLKeepsExplicitZeroStock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `default_stock: 10
products:
  - id: Nawabi
    price: "249.00"
    stock: 0
  - id: Shahi
    price: "249.00"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	c, err := Load(path, DefaultStock)
	require.NoError(t, err)
	assert.Equal(t, []model.InventoryEntry{{ProductID: "Nawabi", Stock: 0}, {ProductID: "Shahi", Stock: 10}}, c.Seed())
}
