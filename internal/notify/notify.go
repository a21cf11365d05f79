// Package notify delivers low-stock signals to whoever needs to hear about
// them. Delivery is best effort: errors are reported to the caller of Notify
// and it is up to the dispatcher to log and drop them.
package notify

import (
	"context"
	"errors"

	"github.com/fairyhunter13/storefront-intake/internal/model"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
)

// Notifier hands a low-stock signal to an outbound transport.
type Notifier interface {
	Notify(ctx context.Context, sig model.LowStockSignal) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, sig model.LowStockSignal) error

func (f NotifierFunc) Notify(ctx context.Context, sig model.LowStockSignal) error { return f(ctx, sig) }

// Log writes each signal to the service log.
type Log struct{}

func (Log) Notify(_ context.Context, sig model.LowStockSignal) error {
	obs.Logger.Warn("low_stock",
		"product_id", sig.ProductID,
		"stock", sig.Stock,
		"sequence", sig.Sequence,
	)
	return nil
}

// Multi fans a signal out to several notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, sig model.LowStockSignal) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, sig); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
