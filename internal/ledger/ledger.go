// Package ledger keeps the live stock level of every catalog product and
// serializes changes to each product behind its own lock.
package ledger

import (
	"sync"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

type entry struct {
	mu    sync.Mutex
	stock int
}

// Ledger is an arena of inventory entries indexed by product id. The set of
// products is fixed at construction, so lookups need no global lock.
type Ledger struct {
	order   []string
	entries map[string]*entry
}

// New builds a ledger from an inventory table. Entry order is preserved for
// Snapshot. Negative stock values are clamped to zero.
func New(table []model.InventoryEntry) *Ledger {
	l := &Ledger{
		order:   make([]string, 0, len(table)),
		entries: make(map[string]*entry, len(table)),
	}
	for _, row := range table {
		if _, dup := l.entries[row.ProductID]; dup {
			continue
		}
		s := row.Stock
		if s < 0 {
			s = 0
		}
		l.order = append(l.order, row.ProductID)
		l.entries[row.ProductID] = &entry{stock: s}
	}
	return l
}

func (l *Ledger) lookup(id string) (*entry, error) {
	e, ok := l.entries[id]
	if !ok {
		return nil, &UnknownProductError{ProductID: id}
	}
	return e, nil
}

// Stock returns the current stock for a product.
func (l *Ledger) Stock(id string) (int, error) {
	e, err := l.lookup(id)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stock, nil
}

// Decrement removes quantity units from a product and returns the new stock.
func (l *Ledger) Decrement(id string, quantity int) (int, error) {
	return l.Commit(id, quantity, nil)
}

// Commit decrements a product by quantity and, still holding the product's
// lock, runs fn with the new stock. If fn fails the decrement is undone and
// fn's error is returned.
func (l *Ledger) Commit(id string, quantity int, fn func(newStock int) error) (int, error) {
	e, err := l.lookup(id)
	if err != nil {
		return 0, err
	}
	if quantity < 1 {
		return 0, &InvalidQuantityError{ProductID: id, Value: quantity}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if quantity > e.stock {
		return 0, &InsufficientStockError{ProductID: id, Requested: quantity, Available: e.stock}
	}
	e.stock -= quantity
	if fn != nil {
		if err := fn(e.stock); err != nil {
			e.stock += quantity
			return 0, err
		}
	}
	return e.stock, nil
}

// SetStock overrides a product's stock level.
func (l *Ledger) SetStock(id string, value int) error {
	return l.Restock(id, value, nil)
}

// Restock sets a product's stock to value and runs fn under the product's
// lock. The previous level is restored when fn fails.
func (l *Ledger) Restock(id string, value int, fn func() error) error {
	e, err := l.lookup(id)
	if err != nil {
		return err
	}
	if value < 0 {
		return &InvalidQuantityError{ProductID: id, Value: value}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.stock
	e.stock = value
	if fn != nil {
		if err := fn(); err != nil {
			e.stock = prev
			return err
		}
	}
	return nil
}

// Snapshot returns every entry in ledger order.
func (l *Ledger) Snapshot() []model.InventoryEntry {
	out := make([]model.InventoryEntry, 0, len(l.order))
	for _, id := range l.order {
		e := l.entries[id]
		e.mu.Lock()
		out = append(out, model.InventoryEntry{ProductID: id, Stock: e.stock})
		e.mu.Unlock()
	}
	return out
}

// Has reports whether the ledger tracks the product.
func (l *Ledger) Has(id string) bool {
	_, ok := l.entries[id]
	return ok
}
