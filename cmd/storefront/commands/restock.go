package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/storefront-intake/cmd/storefront/output"
	"github.com/fairyhunter13/storefront-intake/internal/intake"
)

var restockCmd = &cobra.Command{
	Use:   "restock <product> <stock>",
	Short: "Set a product's stock level",
	Long: `Set the stock level of one product in the record store.

With the CSV store, stop the server first: the running process keeps its own
copy of inventory.csv and would overwrite this change on its next order.

Examples:
  storefront restock Nawabi 25
  storefront restock "Makahan Shahi" 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("stock must be an integer: %w", err)
		}
		return runRestock(cmd.Context(), cmd.OutOrStdout(), args[0], n)
	},
}

func init() {
	rootCmd.AddCommand(restockCmd)
}

func runRestock(ctx context.Context, w io.Writer, product string, stock int) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	led, err := intake.Bootstrap(ctx, st, cat)
	if err != nil {
		return err
	}
	id := product
	if p, ok := cat.Resolve(product); ok {
		id = p.ProductID
	}
	svc := intake.New(cat, led, st, nil, intake.Options{})
	if err := svc.Restock(ctx, id, stock); err != nil {
		return err
	}
	output.Success(w, "%s stock set to %d", id, stock)
	return nil
}
