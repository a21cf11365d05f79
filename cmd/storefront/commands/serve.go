package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/storefront-intake/internal/auth"
	httpapi "github.com/fairyhunter13/storefront-intake/internal/http"
	"github.com/fairyhunter13/storefront-intake/internal/intake"
	"github.com/fairyhunter13/storefront-intake/internal/notify"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
	"github.com/fairyhunter13/storefront-intake/internal/queue"
	"github.com/fairyhunter13/storefront-intake/internal/report"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Serve the order intake API and the admin routes.

Admin routes stay locked until ADMIN_PASSWORD_HASH holds a bcrypt hash;
create one with "storefront hash-password". Low-stock signals are logged and,
when REDIS_URL is set, published on REDIS_CHANNEL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
}

func runServe(parent context.Context) error {
	if listenAddr != "" {
		cfg.HTTPAddr = listenAddr
	}
	obs.Logger.Info("service_starting", "store_name", cfg.StoreName)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			obs.Logger.Error("store_close_error", "error", err)
		}
	}()
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	led, err := intake.Bootstrap(ctx, st, cat)
	if err != nil {
		return err
	}

	notifiers := notify.Multi{notify.Log{}}
	if cfg.RedisURL != "" {
		rn, err := notify.NewRedis(notify.RedisOptions{
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return fmt.Errorf("REDIS_URL: %w", err)
		}
		defer rn.Close()
		pctx, pcancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rn.Ping(pctx); err != nil {
			obs.Logger.Warn("redis_unavailable", "addr", rn.Addr(), "error", err)
		}
		pcancel()
		notifiers = append(notifiers, rn)
	}
	mgr := queue.NewManager(queue.Options{
		Workers:       cfg.NotifyWorkers,
		HighWatermark: cfg.QueueHighWatermark,
		NotifyTimeout: cfg.NotifyTimeout,
	}, queue.New(cfg.NotifyBuffer), notifiers)
	mgr.Start(ctx)

	threshold := cfg.LowStockThreshold
	svc := intake.New(cat, led, st, mgr, intake.Options{LowStockThreshold: &threshold})

	var verifier auth.Verifier = auth.DenyAll{}
	if cfg.AdminPasswordHash != "" {
		b, err := auth.NewBcrypt(cfg.AdminUsername, cfg.AdminPasswordHash)
		if err != nil {
			return err
		}
		verifier = b
	} else {
		obs.Logger.Warn("admin_disabled", "reason", "ADMIN_PASSWORD_HASH is empty")
	}

	app := httpapi.NewApp(cfg, httpapi.Deps{
		Catalog:  cat,
		Intake:   svc,
		View:     report.New(st, led),
		Store:    st,
		Sessions: auth.NewSessions(verifier, cfg.SessionTTL),
		Signals:  mgr,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	select {
	case s := <-sigc:
		obs.Logger.Info("shutdown_signal", "signal", s.String())
	case err := <-errc:
		obs.Logger.Error("http_server_error", "error", err)
		mgr.Stop()
		return err
	}

	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", mgr.Metrics().Backlog, "worker_count", mgr.WorkerCount())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}

	mgr.CloseIntake()
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := mgr.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}
	mgr.Stop()
	obs.Logger.Info("service_stopped")
	return nil
}
