package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperations(t *testing.T) {
	ops, err := Operations()
	require.NoError(t, err)
	assert.Contains(t, ops, "POST /orders")
	assert.Contains(t, ops, "PUT /admin/inventory/{product_id}")
	assert.Contains(t, ops, "GET /admin/orders/{order_id}/invoice")
	assert.IsIncreasing(t, ops)
}
