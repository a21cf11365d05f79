package ledger

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
)

// UnknownProductError reports a reference to a product the ledger does not track.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %q", e.ProductID)
}

func (e *UnknownProductError) Is(target error) bool { return target == ErrUnknownProduct }

// InsufficientStockError carries the requested quantity and the stock observed
// when the request was rejected.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidQuantityError rejects a negative stock override or a non-positive decrement.
type InvalidQuantityError struct {
	ProductID string
	Value     int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for %q", e.Value, e.ProductID)
}

func (e *InvalidQuantityError) Is(target error) bool { return target == ErrInvalidQuantity }
