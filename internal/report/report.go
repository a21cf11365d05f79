// Package report aggregates committed orders and current inventory for the
// admin views. Nothing here mutates state.
package report

import (
	"context"
	"sort"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

// OrderSource lists committed orders.
type OrderSource interface {
	Orders(ctx context.Context) ([]model.OrderRecord, error)
}

// InventorySource exposes the live inventory in catalog order.
type InventorySource interface {
	Snapshot() []model.InventoryEntry
}

// View is the read-only reporting view.
type View struct {
	orders    OrderSource
	inventory InventorySource
}

// New builds a View.
func New(orders OrderSource, inventory InventorySource) *View {
	return &View{orders: orders, inventory: inventory}
}

// CountsByProduct counts order records per product id.
func (v *View) CountsByProduct(ctx context.Context) (map[string]int, error) {
	orders, err := v.orders.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return countByProduct(orders), nil
}

func countByProduct(orders []model.OrderRecord) map[string]int {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.ProductID]++
	}
	return counts
}

// CurrentInventory returns every inventory entry in catalog order.
func (v *View) CurrentInventory() []model.InventoryEntry {
	return v.inventory.Snapshot()
}

// LowStock returns entries at or below threshold, in catalog order.
func (v *View) LowStock(threshold int) []model.InventoryEntry {
	var out []model.InventoryEntry
	for _, e := range v.inventory.Snapshot() {
		if e.Stock <= threshold {
			out = append(out, e)
		}
	}
	return out
}

// Orders returns every order, oldest first.
func (v *View) Orders(ctx context.Context) ([]model.OrderRecord, error) {
	orders, err := v.orders.Orders(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Timestamp.Before(orders[j].Timestamp) })
	return orders, nil
}

// TotalOrders counts every committed order.
func (v *View) TotalOrders(ctx context.Context) (int, error) {
	orders, err := v.orders.Orders(ctx)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

// ProductCount is one bar of the sales chart.
type ProductCount struct {
	ProductID string `json:"product_id"`
	Orders    int    `json:"orders"`
}

// Summary is the admin dashboard payload.
type Summary struct {
	TotalOrders int                    `json:"total_orders"`
	Counts      []ProductCount         `json:"counts"`
	Inventory   []model.InventoryEntry `json:"inventory"`
	LowStock    []model.InventoryEntry `json:"low_stock"`
	Orders      []model.OrderRecord    `json:"orders"`
}

// Summary bundles the dashboard figures from a single read of the orders.
// Counts are sorted by descending order count, then product id.
func (v *View) Summary(ctx context.Context, threshold int) (Summary, error) {
	orders, err := v.Orders(ctx)
	if err != nil {
		return Summary{}, err
	}
	counts := countByProduct(orders)
	pcs := make([]ProductCount, 0, len(counts))
	for id, n := range counts {
		pcs = append(pcs, ProductCount{ProductID: id, Orders: n})
	}
	sort.Slice(pcs, func(i, j int) bool {
		if pcs[i].Orders != pcs[j].Orders {
			return pcs[i].Orders > pcs[j].Orders
		}
		return pcs[i].ProductID < pcs[j].ProductID
	})
	inv := v.CurrentInventory()
	var low []model.InventoryEntry
	for _, e := range inv {
		if e.Stock <= threshold {
			low = append(low, e)
		}
	}
	if orders == nil {
		orders = []model.OrderRecord{}
	}
	return Summary{
		TotalOrders: len(orders),
		Counts:      pcs,
		Inventory:   inv,
		LowStock:    low,
		Orders:      orders,
	}, nil
}
