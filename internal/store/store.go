// Package store persists order records and the inventory table. Backends are
// interchangeable behind Store: an in-memory store, a pair of CSV flat files
// and a Postgres database.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

var (
	// ErrNoInventory is returned by LoadInventory when no table was saved yet.
	ErrNoInventory = errors.New("no inventory table")
	// ErrPersistence matches every PersistenceError.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps an I/O failure during a write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// Store is the record store contract used by order intake and reporting.
type Store interface {
	// LoadInventory returns the persisted inventory table or ErrNoInventory.
	LoadInventory(ctx context.Context) ([]model.InventoryEntry, error)
	// SaveInventory replaces the whole inventory table.
	SaveInventory(ctx context.Context, entries []model.InventoryEntry) error
	// Commit appends rec and writes entry's stock as one unit.
	Commit(ctx context.Context, rec model.OrderRecord, entry model.InventoryEntry) error
	// SetStock writes a single inventory entry.
	SetStock(ctx context.Context, entry model.InventoryEntry) error
	// Orders returns every committed order record in commit order.
	Orders(ctx context.Context) ([]model.OrderRecord, error)
	Close() error
}

// Memory is a process-local Store.
type Memory struct {
	mu        sync.RWMutex
	orders    []model.OrderRecord
	inventory *table
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) LoadInventory(ctx context.Context) ([]model.InventoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inventory == nil {
		return nil, ErrNoInventory
	}
	return s.inventory.rows(), nil
}

func (s *Memory) SaveInventory(ctx context.Context, entries []model.InventoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory = newTable(entries)
	return nil
}

func (s *Memory) Commit(ctx context.Context, rec model.OrderRecord, entry model.InventoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inventory == nil {
		s.inventory = newTable(nil)
	}
	s.inventory = s.inventory.with(entry)
	s.orders = append(s.orders, rec)
	return nil
}

func (s *Memory) SetStock(ctx context.Context, entry model.InventoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inventory == nil {
		s.inventory = newTable(nil)
	}
	s.inventory = s.inventory.with(entry)
	return nil
}

func (s *Memory) Orders(ctx context.Context) ([]model.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.OrderRecord, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *Memory) Close() error { return nil }

// table is an ordered inventory table. Values are treated as immutable; with
// returns a modified copy.
type table struct {
	order []string
	stock map[string]int
}

func newTable(entries []model.InventoryEntry) *table {
	t := &table{stock: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, ok := t.stock[e.ProductID]; !ok {
			t.order = append(t.order, e.ProductID)
		}
		t.stock[e.ProductID] = e.Stock
	}
	return t
}

func (t *table) with(e model.InventoryEntry) *table {
	nt := &table{order: make([]string, len(t.order), len(t.order)+1), stock: make(map[string]int, len(t.stock)+1)}
	copy(nt.order, t.order)
	for k, v := range t.stock {
		nt.stock[k] = v
	}
	if _, ok := nt.stock[e.ProductID]; !ok {
		nt.order = append(nt.order, e.ProductID)
	}
	nt.stock[e.ProductID] = e.Stock
	return nt
}

func (t *table) rows() []model.InventoryEntry {
	out := make([]model.InventoryEntry, len(t.order))
	for i, id := range t.order {
		out[i] = model.InventoryEntry{ProductID: id, Stock: t.stock[id]}
	}
	return out
}

// ErrOrderNotFound is returned by FindOrder for an unknown order id.
var ErrOrderNotFound = errors.New("order not found")

type orderGetter interface {
	Order(ctx context.Context, id string) (model.OrderRecord, error)
}

// FindOrder looks up one order, using a direct lookup when the backend has one.
func FindOrder(ctx context.Context, s Store, id string) (model.OrderRecord, error) {
	if g, ok := s.(orderGetter); ok {
		return g.Order(ctx, id)
	}
	orders, err := s.Orders(ctx)
	if err != nil {
		return model.OrderRecord{}, err
	}
	for _, o := range orders {
		if o.OrderID == id {
			return o, nil
		}
	}
	return model.OrderRecord{}, ErrOrderNotFound
}
