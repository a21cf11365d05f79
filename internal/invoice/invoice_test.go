package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

func rec() model.OrderRecord {
	return model.OrderRecord{
		OrderID:   "o-1",
		Timestamp: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Customer:  model.Customer{Name: "A", Phone: "1", Address: "X"},
		ProductID: "Nawabi",
		Quantity:  3,
	}
}

func TestTotal(t *testing.T) {
	total, err := Total(rec(), map[string]decimal.Decimal{"Nawabi": decimal.RequireFromString("249.10")})
	require.NoError(t, err)
	assert.Equal(t, "747.30", total.StringFixed(2))

	_, err = Total(rec(), map[string]decimal.Decimal{})
	require.ErrorAs(t, err, &ErrNoPrice{})
}

func TestRender(t *testing.T) {
	var b strings.Builder
	p := model.Product{ProductID: "Nawabi", Name: "Makahan Nawabi", Price: decimal.RequireFromString("249")}
	require.NoError(t, Render(&b, "Makahan Store", rec(), p))
	out := b.String()
	assert.Contains(t, out, "Makahan Store")
	assert.Contains(t, out, "Order:    o-1")
	assert.Contains(t, out, "2026-03-04 05:06:07")
	assert.Contains(t, out, "Makahan Nawabi")
	assert.Contains(t, out, "Total:    747.00")
	assert.NotContains(t, out, "Email:")
}
