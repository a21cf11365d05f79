package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/storefront-intake/cmd/storefront/output"
	"github.com/fairyhunter13/storefront-intake/internal/ledger"
	"github.com/fairyhunter13/storefront-intake/internal/report"
	"github.com/fairyhunter13/storefront-intake/internal/store"
)

var (
	reportJSON   bool
	reportOrders bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print order counts and current inventory",
	Long: `Read the record store and print the admin dashboard: orders per product,
current stock (low entries highlighted) and, with --orders, every order.

Examples:
  storefront report
  storefront report --orders
  storefront report --db postgres://localhost/storefront --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output in JSON format")
	reportCmd.Flags().BoolVar(&reportOrders, "orders", false, "Also list every order")
}

func runReport(ctx context.Context, w io.Writer) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	table, err := st.LoadInventory(ctx)
	if errors.Is(err, store.ErrNoInventory) {
		cat, cerr := loadCatalog(cfg)
		if cerr != nil {
			return cerr
		}
		output.Warning(w, "no inventory saved yet, showing catalog seed")
		table, err = cat.Seed(), nil
	}
	if err != nil {
		return err
	}

	sum, err := report.New(st, ledger.New(table)).Summary(ctx, cfg.LowStockThreshold)
	if err != nil {
		return err
	}
	if reportJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	renderSummary(w, sum, reportOrders)
	return nil
}

func renderSummary(w io.Writer, sum report.Summary, withOrders bool) {
	output.Section(w, fmt.Sprintf("Orders (%d total)", sum.TotalOrders))
	if len(sum.Counts) == 0 {
		output.Muted(w, "no orders yet")
	} else {
		rows := make([][]string, 0, len(sum.Counts))
		for _, c := range sum.Counts {
			rows = append(rows, []string{c.ProductID, strconv.Itoa(c.Orders)})
		}
		fmt.Fprintln(w, output.Table([]string{"Product", "Orders"}, rows))
	}

	low := make(map[string]bool, len(sum.LowStock))
	for _, e := range sum.LowStock {
		low[e.ProductID] = true
	}
	output.Section(w, "Inventory")
	rows := make([][]string, 0, len(sum.Inventory))
	for _, e := range sum.Inventory {
		stock := strconv.Itoa(e.Stock)
		if low[e.ProductID] {
			stock = output.Warn(stock)
		}
		rows = append(rows, []string{e.ProductID, stock})
	}
	fmt.Fprintln(w, output.Table([]string{"Product", "Stock"}, rows))

	if !withOrders || len(sum.Orders) == 0 {
		return
	}
	output.Section(w, "All orders")
	rows = rows[:0]
	for _, o := range sum.Orders {
		rows = append(rows, []string{
			o.Timestamp.Format("2006-01-02 15:04:05"),
			o.Customer.Name,
			o.Customer.Phone,
			o.ProductID,
			strconv.Itoa(o.Quantity),
			strconv.Itoa(o.Rating),
		})
	}
	fmt.Fprintln(w, output.Table([]string{"Time", "Customer", "Phone", "Product", "Qty", "Rating"}, rows))
}
