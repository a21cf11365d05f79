// Package intake turns an order request into a committed order record. The
// stock decrement and the order append happen under the product's ledger
// lock and either both persist or neither does.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/storefront-intake/internal/catalog"
	"github.com/fairyhunter13/storefront-intake/internal/ledger"
	"github.com/fairyhunter13/storefront-intake/internal/model"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
	"github.com/fairyhunter13/storefront-intake/internal/store"
)

// DefaultLowStockThreshold is used when Options leaves the threshold unset.
const DefaultLowStockThreshold = 2

// Signaller receives low-stock signals. Signal must not block.
type Signaller interface {
	Signal(sig model.LowStockSignal)
}

// Options tunes a Service.
type Options struct {
	// LowStockThreshold; a negative value disables signalling.
	LowStockThreshold *int
	Now               func() time.Time
	NewID             func() string
}

// Service validates and commits orders.
type Service struct {
	cat       *catalog.Catalog
	led       *ledger.Ledger
	st        store.Store
	sig       Signaller
	threshold int
	now       func() time.Time
	newID     func() string
}

// New wires a Service. sig may be nil.
func New(cat *catalog.Catalog, led *ledger.Ledger, st store.Store, sig Signaller, opts Options) *Service {
	s := &Service{
		cat:       cat,
		led:       led,
		st:        st,
		sig:       sig,
		threshold: DefaultLowStockThreshold,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	if opts.LowStockThreshold != nil {
		s.threshold = *opts.LowStockThreshold
	}
	if opts.Now != nil {
		s.now = opts.Now
	}
	if opts.NewID != nil {
		s.newID = opts.NewID
	}
	return s
}

// Threshold returns the low-stock threshold in effect.
func (s *Service) Threshold() int { return s.threshold }

// Validate checks the required fields of a request without side effects.
func Validate(req model.OrderRequest) error {
	var missing []string
	if strings.TrimSpace(req.Customer.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Customer.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(req.Customer.Address) == "" {
		missing = append(missing, "address")
	}
	if req.Quantity < 1 {
		missing = append(missing, "quantity")
	}
	if req.Rating != 0 && (req.Rating < 1 || req.Rating > 5) {
		missing = append(missing, "rating")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Submit validates req, decrements stock and appends the order record. On
// any error nothing is persisted and stock is unchanged. Errors are returned
// as produced by the ledger and store; Submit never retries.
func (s *Service) Submit(ctx context.Context, req model.OrderRequest) (model.OrderRecord, error) {
	if err := Validate(req); err != nil {
		return model.OrderRecord{}, err
	}
	p, ok := s.cat.Resolve(req.Product)
	if !ok || !s.led.Has(p.ProductID) {
		return model.OrderRecord{}, &ledger.UnknownProductError{ProductID: req.Product}
	}

	rating := req.Rating
	if rating == 0 {
		rating = model.DefaultRating
	}
	rec := model.OrderRecord{
		OrderID:   s.newID(),
		Customer:  trimCustomer(req.Customer),
		ProductID: p.ProductID,
		Quantity:  req.Quantity,
		Rating:    rating,
		Referral:  model.Referral{Name: strings.TrimSpace(req.Referral.Name), Contact: strings.TrimSpace(req.Referral.Contact)},
	}

	newStock, err := s.led.Commit(p.ProductID, req.Quantity, func(newStock int) error {
		rec.Timestamp = s.now()
		entry := model.InventoryEntry{ProductID: p.ProductID, Stock: newStock}
		if err := s.st.Commit(ctx, rec, entry); err != nil {
			var pe *store.PersistenceError
			if !errors.As(err, &pe) {
				err = &store.PersistenceError{Op: "commit order", Err: err}
			}
			return err
		}
		return nil
	})
	if err != nil {
		obs.Logger.Info("order_rejected", "product_id", p.ProductID, "quantity", req.Quantity, "error", err.Error())
		return model.OrderRecord{}, err
	}

	obs.Logger.Info("order_committed",
		"order_id", rec.OrderID,
		"product_id", rec.ProductID,
		"quantity", rec.Quantity,
		"stock", newStock,
	)
	if s.sig != nil && s.threshold >= 0 && newStock <= s.threshold {
		s.sig.Signal(model.LowStockSignal{ProductID: rec.ProductID, Stock: newStock, At: rec.Timestamp})
	}
	return rec, nil
}

// Restock sets a product's stock level and persists it.
func (s *Service) Restock(ctx context.Context, productID string, value int) error {
	err := s.led.Restock(productID, value, func() error {
		return s.st.SetStock(ctx, model.InventoryEntry{ProductID: productID, Stock: value})
	})
	if err != nil {
		return err
	}
	obs.Logger.Info("stock_set", "product_id", productID, "stock", value)
	return nil
}

// Stock returns the ledger's current level for productID.
func (s *Service) Stock(productID string) (int, error) { return s.led.Stock(productID) }

func trimCustomer(c model.Customer) model.Customer {
	return model.Customer{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
	}
}

// Bootstrap loads the inventory table from st, seeding it from the catalog
// when none exists yet. The ledger follows catalog order: saved levels are
// kept, catalog products missing from the saved table are added at their seed
// stock, and saved products no longer in the catalog are left out.
func Bootstrap(ctx context.Context, st store.Store, cat *catalog.Catalog) (*ledger.Ledger, error) {
	saved, err := st.LoadInventory(ctx)
	if errors.Is(err, store.ErrNoInventory) {
		table := cat.Seed()
		if err := st.SaveInventory(ctx, table); err != nil {
			return nil, fmt.Errorf("seed inventory: %w", err)
		}
		obs.Logger.Info("inventory_seeded", "products", len(table))
		return ledger.New(table), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	levels := make(map[string]int, len(saved))
	for _, e := range saved {
		levels[e.ProductID] = e.Stock
	}
	table := cat.Seed()
	added := 0
	for i, e := range table {
		if n, ok := levels[e.ProductID]; ok {
			table[i].Stock = n
			delete(levels, e.ProductID)
			continue
		}
		added++
	}
	for id := range levels {
		obs.Logger.Warn("inventory_product_not_in_catalog", "product_id", id)
	}
	if added > 0 {
		if err := st.SaveInventory(ctx, table); err != nil {
			return nil, fmt.Errorf("extend inventory: %w", err)
		}
		obs.Logger.Info("inventory_extended", "added", added)
	}
	return ledger.New(table), nil
}
