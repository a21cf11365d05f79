package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/storefront-intake/cmd/storefront/output"
	"github.com/fairyhunter13/storefront-intake/internal/config"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
)

var (
	// Global flags
	envFile  string
	dataDir  string
	dbURL    string
	logLevel string

	cfg config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront order intake and inventory service",
	Long: `storefront takes customer orders, decrements inventory in the same commit,
and serves a small admin dashboard.

Orders and inventory live in CSV files under --data-dir unless --db (or
DATABASE_URL) points at PostgreSQL. Configuration is read from the
environment, optionally seeded from a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		cfg = config.Load()
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = dataDir
		}
		if cmd.Flags().Changed("db") {
			cfg.DatabaseURL = dbURL
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd == serveCmd {
			obs.InitLogger(cfg.LogLevel)
		} else {
			obs.InitLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error(rootCmd.ErrOrStderr(), "%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding orders.csv and inventory.csv (overrides DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}
