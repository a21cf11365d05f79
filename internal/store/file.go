package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

// File names used inside the data directory.
const (
	OrdersFile    = "orders.csv"
	InventoryFile = "inventory.csv"
)

// OrderColumns is the header row of the orders table.
var OrderColumns = []string{
	"order_id", "timestamp",
	"customer_name", "customer_phone", "customer_email", "customer_address",
	"product_id", "quantity", "rating",
	"referral_name", "referral_contact",
}

// InventoryColumns is the header row of the inventory table.
var InventoryColumns = []string{"product_id", "stock"}

// File stores both tables as CSV files in one directory. Both tables are kept
// in memory; the orders file is appended to and the inventory file is
// rewritten through a temp file and rename on every change.
type File struct {
	dir string

	mu        sync.RWMutex
	orders    []model.OrderRecord
	inventory *table
	out       *os.File
}

// OpenFile opens (or creates) a CSV store rooted at dir.
func OpenFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	s := &File{dir: dir}
	orders, err := readOrders(filepath.Join(dir, OrdersFile))
	if err != nil {
		return nil, err
	}
	s.orders = orders
	inv, err := readInventory(filepath.Join(dir, InventoryFile))
	if err != nil && !errors.Is(err, ErrNoInventory) {
		return nil, err
	}
	if err == nil {
		s.inventory = newTable(inv)
	}
	f, err := os.OpenFile(filepath.Join(dir, OrdersFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open orders file: %w", err)
	}
	s.out = f
	return s, nil
}

// Dir returns the data directory.
func (s *File) Dir() string { return s.dir }

func (s *File) LoadInventory(ctx context.Context) ([]model.InventoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inventory == nil {
		return nil, ErrNoInventory
	}
	return s.inventory.rows(), nil
}

func (s *File) SaveInventory(ctx context.Context, entries []model.InventoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTable(entries)
	if err := s.writeInventory(t); err != nil {
		return persistErr("write inventory", err)
	}
	s.inventory = t
	return nil
}

func (s *File) SetStock(ctx context.Context, entry model.InventoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.inventory
	if base == nil {
		base = newTable(nil)
	}
	t := base.with(entry)
	if err := s.writeInventory(t); err != nil {
		return persistErr("write inventory", err)
	}
	s.inventory = t
	return nil
}

// Commit appends the order row, then rewrites the inventory table. When the
// inventory write fails the orders file is truncated to its previous size.
func (s *File) Commit(ctx context.Context, rec model.OrderRecord, entry model.InventoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fi, err := s.out.Stat()
	if err != nil {
		return persistErr("stat orders", err)
	}
	size := fi.Size()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if size == 0 {
		_ = w.Write(OrderColumns)
	}
	_ = w.Write(orderRow(rec))
	w.Flush()
	if err := w.Error(); err != nil {
		return persistErr("encode order", err)
	}
	if _, err := s.out.Write(buf.Bytes()); err != nil {
		s.truncate(size)
		return persistErr("append order", err)
	}
	if err := s.out.Sync(); err != nil {
		s.truncate(size)
		return persistErr("sync orders", err)
	}

	base := s.inventory
	if base == nil {
		base = newTable(nil)
	}
	t := base.with(entry)
	if err := s.writeInventory(t); err != nil {
		s.truncate(size)
		return persistErr("write inventory", err)
	}
	s.inventory = t
	s.orders = append(s.orders, rec)
	return nil
}

func (s *File) truncate(size int64) {
	_ = s.out.Truncate(size)
	_ = s.out.Sync()
}

func (s *File) Orders(ctx context.Context) ([]model.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.OrderRecord, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return nil
	}
	err := s.out.Close()
	s.out = nil
	return err
}

func (s *File) writeInventory(t *table) error {
	tmp, err := os.CreateTemp(s.dir, "inventory-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	w := csv.NewWriter(tmp)
	_ = w.Write(InventoryColumns)
	for _, e := range t.rows() {
		_ = w.Write([]string{e.ProductID, strconv.Itoa(e.Stock)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, InventoryFile))
}

func orderRow(r model.OrderRecord) []string {
	return []string{
		r.OrderID,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.Customer.Name, r.Customer.Phone, r.Customer.Email, r.Customer.Address,
		r.ProductID,
		strconv.Itoa(r.Quantity),
		strconv.Itoa(r.Rating),
		r.Referral.Name, r.Referral.Contact,
	}
}

func parseOrderRow(row []string) (model.OrderRecord, error) {
	if len(row) != len(OrderColumns) {
		return model.OrderRecord{}, fmt.Errorf("expected %d columns, got %d", len(OrderColumns), len(row))
	}
	ts, err := time.Parse(time.RFC3339Nano, row[1])
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	qty, err := strconv.Atoi(row[7])
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("quantity: %w", err)
	}
	rating, err := strconv.Atoi(row[8])
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("rating: %w", err)
	}
	return model.OrderRecord{
		OrderID:   row[0],
		Timestamp: ts,
		Customer:  model.Customer{Name: row[2], Phone: row[3], Email: row[4], Address: row[5]},
		ProductID: row[6],
		Quantity:  qty,
		Rating:    rating,
		Referral:  model.Referral{Name: row[9], Contact: row[10]},
	}, nil
}

func readOrders(path string) ([]model.OrderRecord, error) {
	rows, err := readCSV(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	var out []model.OrderRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rec, err := parseOrderRow(row)
		if err != nil {
			return nil, fmt.Errorf("orders row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func readInventory(path string) ([]model.InventoryEntry, error) {
	rows, err := readCSV(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoInventory
	}
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoInventory
	}
	out := make([]model.InventoryEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(InventoryColumns) {
			return nil, fmt.Errorf("inventory row %d: expected %d columns, got %d", i+2, len(InventoryColumns), len(row))
		}
		n, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("inventory row %d: stock: %w", i+2, err)
		}
		out = append(out, model.InventoryEntry{ProductID: row[0], Stock: n})
	}
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
