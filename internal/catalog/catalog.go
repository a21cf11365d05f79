// Package catalog holds the product list the storefront sells, resolves
// requested product names to identifiers and exposes the unit price map.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

// DefaultStock is the starting stock for every seeded product.
const DefaultStock = 10

// ErrEmpty is returned when a catalog has no products.
var ErrEmpty = errors.New("catalog has no products")

// Catalog is an ordered, read-only product list.
type Catalog struct {
	products []model.Product
	byID     map[string]int
	byName   map[string]int
}

// Default returns the storefront's built-in product line.
func Default() *Catalog {
	price := decimal.RequireFromString("249.00")
	return mustNew([]model.Product{
		{ProductID: "Nawabi", Name: "Makahan Nawabi", Price: price, Stock: DefaultStock},
		{ProductID: "Shahi", Name: "Makahan Shahi", Price: price, Stock: DefaultStock},
		{ProductID: "Sultaana", Name: "Makahan Sultaana", Price: price, Stock: DefaultStock},
		{ProductID: "Azaadi", Name: "Makahan Azaadi", Price: price, Stock: DefaultStock},
	})
}

func mustNew(products []model.Product) *Catalog {
	c, err := New(products)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog, keeping the given order. Identifiers must be unique.
func New(products []model.Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
		byName:   make(map[string]int, len(products)),
	}
	for _, p := range products {
		p.ProductID = strings.TrimSpace(p.ProductID)
		if p.ProductID == "" {
			return nil, fmt.Errorf("catalog: product id is required")
		}
		if _, dup := c.byID[p.ProductID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ProductID)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("catalog: product %q has negative stock", p.ProductID)
		}
		if p.Name == "" {
			p.Name = p.ProductID
		}
		idx := len(c.products)
		c.products = append(c.products, p)
		c.byID[p.ProductID] = idx
		c.byName[strings.ToLower(p.Name)] = idx
	}
	return c, nil
}

type fileCatalog struct {
	DefaultStock *int          `yaml:"default_stock"`
	Products     []fileProduct `yaml:"products"`
}

// fileProduct distinguishes an omitted stock from an explicit zero.
type fileProduct struct {
	ID    string          `yaml:"id"`
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
	Stock *int            `yaml:"stock"`
}

// Load reads a YAML catalog file. Products without a stock value get
// default_stock, or fallbackStock when the file does not set one.
func Load(path string, fallbackStock int) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var fc fileCatalog
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	def := fallbackStock
	if fc.DefaultStock != nil {
		def = *fc.DefaultStock
	}
	products := make([]model.Product, 0, len(fc.Products))
	for _, fp := range fc.Products {
		stock := def
		if fp.Stock != nil {
			stock = *fp.Stock
		}
		products = append(products, model.Product{ProductID: fp.ID, Name: fp.Name, Price: fp.Price, Stock: stock})
	}
	return New(products)
}

// WithStock returns a copy of c whose seed stock is value for every product.
// A negative value is rejected.
func (c *Catalog) WithStock(value int) (*Catalog, error) {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	for i := range out {
		out[i].Stock = value
	}
	return New(out)
}

// Resolve maps a requested product, given by identifier or display name, to
// its catalog entry.
func (c *Catalog) Resolve(requested string) (model.Product, bool) {
	requested = strings.TrimSpace(requested)
	if i, ok := c.byID[requested]; ok {
		return c.products[i], true
	}
	if i, ok := c.byName[strings.ToLower(requested)]; ok {
		return c.products[i], true
	}
	return model.Product{}, false
}

// Get returns the product with the given identifier.
func (c *Catalog) Get(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Products returns the catalog in its declared order.
func (c *Catalog) Products() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// IDs returns product identifiers in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.products))
	for i, p := range c.products {
		ids[i] = p.ProductID
	}
	return ids
}

// Seed returns the initial inventory table for a store that has none yet.
func (c *Catalog) Seed() []model.InventoryEntry {
	entries := make([]model.InventoryEntry, len(c.products))
	for i, p := range c.products {
		entries[i] = model.InventoryEntry{ProductID: p.ProductID, Stock: p.Stock}
	}
	return entries
}

// Prices returns the unit price map keyed by product identifier.
func (c *Catalog) Prices() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(c.products))
	for _, p := range c.products {
		m[p.ProductID] = p.Price
	}
	return m
}
