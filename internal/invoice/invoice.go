// Package invoice prices a single order and renders it as a plain-text
// document.
package invoice

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

// ErrNoPrice is returned when the price map has no entry for the product.
type ErrNoPrice struct{ ProductID string }

func (e ErrNoPrice) Error() string { return fmt.Sprintf("no unit price for product %q", e.ProductID) }

// Total returns price * quantity for the order's product.
func Total(rec model.OrderRecord, prices map[string]decimal.Decimal) (decimal.Decimal, error) {
	price, ok := prices[rec.ProductID]
	if !ok {
		return decimal.Zero, ErrNoPrice{ProductID: rec.ProductID}
	}
	return price.Mul(decimal.NewFromInt(int64(rec.Quantity))), nil
}

// Render writes a plain-text invoice for rec. storeName heads the document.
func Render(w io.Writer, storeName string, rec model.OrderRecord, product model.Product) error {
	total, err := Total(rec, map[string]decimal.Decimal{product.ProductID: product.Price})
	if err != nil {
		return err
	}
	name := product.Name
	if name == "" {
		name = product.ProductID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nINVOICE\n\n", storeName)
	fmt.Fprintf(&b, "Order:    %s\n", rec.OrderID)
	fmt.Fprintf(&b, "Date:     %s\n\n", rec.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Bill to:  %s\n", rec.Customer.Name)
	fmt.Fprintf(&b, "Phone:    %s\n", rec.Customer.Phone)
	if rec.Customer.Email != "" {
		fmt.Fprintf(&b, "Email:    %s\n", rec.Customer.Email)
	}
	fmt.Fprintf(&b, "Ship to:  %s\n\n", rec.Customer.Address)

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Product\tQty\tUnit price\tAmount")
	fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, rec.Quantity, product.Price.StringFixed(2), total.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(&b, "\nTotal:    %s\n", total.StringFixed(2))

	_, err = io.WriteString(w, b.String())
	return err
}
