// Package model defines domain types used by the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultQuantity is applied when an order request omits the quantity.
const DefaultQuantity = 1

// DefaultRating mirrors the storefront form's preselected rating.
const DefaultRating = 4

// Customer holds the contact details captured with an order.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// Referral is an optional friend recommendation. It is stored as given.
type Referral struct {
	Name    string `json:"name,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// OrderRecord represents one completed purchase. It is never mutated once committed.
type OrderRecord struct {
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
	Customer  Customer  `json:"customer"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Rating    int       `json:"rating"`
	Referral  Referral  `json:"referral"`
}

// InventoryEntry is the current stock level for one catalog product.
type InventoryEntry struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

// Product describes a catalog item.
type Product struct {
	ProductID string          `json:"product_id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Price     decimal.Decimal `json:"price" yaml:"price"`
	Stock     int             `json:"-" yaml:"stock"`
}

// OrderRequest is the input shape accepted by order intake.
type OrderRequest struct {
	Customer Customer `json:"customer"`
	Product  string   `json:"product"`
	Quantity int      `json:"quantity"`
	Rating   int      `json:"rating"`
	Referral Referral `json:"referral"`
}

// LowStockSignal is handed to the notification collaborator after a commit
// leaves a product at or below the configured threshold.
type LowStockSignal struct {
	ProductID string    `json:"product_id"`
	Stock     int       `json:"stock"`
	At        time.Time `json:"at"`
	Sequence  uint64    `json:"sequence"`
}
