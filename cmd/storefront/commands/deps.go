package commands

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/storefront-intake/internal/catalog"
	"github.com/fairyhunter13/storefront-intake/internal/config"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
	"github.com/fairyhunter13/storefront-intake/internal/store"
)

// openStore picks PostgreSQL when a URL is configured and the CSV files
// otherwise.
func openStore(ctx context.Context, c config.Config) (store.Store, error) {
	if c.DatabaseURL != "" {
		st, err := store.OpenPostgres(ctx, c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		obs.Logger.Info("store_opened", "backend", "postgres")
		return st, nil
	}
	st, err := store.OpenFile(c.DataDir)
	if err != nil {
		return nil, err
	}
	obs.Logger.Info("store_opened", "backend", "csv", "dir", st.Dir())
	return st, nil
}

func loadCatalog(c config.Config) (*catalog.Catalog, error) {
	if c.CatalogFile == "" {
		cat, err := catalog.Default().WithStock(c.DefaultStock)
		if err != nil {
			return nil, fmt.Errorf("DEFAULT_STOCK: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.Load(c.CatalogFile, c.DefaultStock)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return cat, nil
}
