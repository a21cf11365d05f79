package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fairyhunter13/storefront-intake/internal/auth"
	"github.com/fairyhunter13/storefront-intake/internal/catalog"
	"github.com/fairyhunter13/storefront-intake/internal/config"
	httpapi "github.com/fairyhunter13/storefront-intake/internal/http"
	"github.com/fairyhunter13/storefront-intake/internal/intake"
	"github.com/fairyhunter13/storefront-intake/internal/model"
	"github.com/fairyhunter13/storefront-intake/internal/notify"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
	"github.com/fairyhunter13/storefront-intake/internal/queue"
	"github.com/fairyhunter13/storefront-intake/internal/report"
	"github.com/fairyhunter13/storefront-intake/internal/store"
)

// boot wires the service over the CSV store in dir the way serve does.
func boot(t *testing.T, dir string, n notify.Notifier) (http.Handler, *queue.Manager, *store.File) {
	t.Helper()
	cfg := config.Load()
	obs.InitLogger("error")
	st, err := store.OpenFile(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cat := catalog.Default()
	led, err := intake.Bootstrap(context.Background(), st, cat)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	mgr := queue.NewManager(queue.Options{Workers: 1}, queue.New(16), n)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	mgr.Start(ctx)
	app := httpapi.NewApp(cfg, httpapi.Deps{
		Catalog:  cat,
		Intake:   intake.New(cat, led, st, mgr, intake.Options{}),
		View:     report.New(st, led),
		Store:    st,
		Sessions: auth.NewSessions(auth.DenyAll{}, time.Minute),
		Signals:  mgr,
	})
	return httpapi.NewRouter(app), mgr, st
}

func TestIntegration_OrdersSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	var signals []model.LowStockSignal
	h, mgr, st := boot(t, dir, notify.NotifierFunc(func(_ context.Context, sig model.LowStockSignal) error {
		signals = append(signals, sig)
		return nil
	}))

	for i := 0; i < 4; i++ {
		b := bytes.NewBufferString(`{"customer":{"name":"Ravi","phone":"98","address":"Pune"},"product":"Azaadi","quantity":2}`)
		r := httptest.NewRequest(http.MethodPost, "/orders", b)
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if ok := mgr.DrainUntil(ctx); !ok {
		t.Fatalf("drain timeout")
	}
	mgr.Stop()
	if len(signals) != 1 || signals[0].Stock != 2 {
		t.Fatalf("expected one low-stock signal at 2, got %+v", signals)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	h2, mgr2, st2 := boot(t, dir, notify.Log{})
	defer mgr2.Stop()
	defer st2.Close()

	rg := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	wg := httptest.NewRecorder()
	h2.ServeHTTP(wg, rg)
	if wg.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", wg.Code)
	}
	var inv []model.InventoryEntry
	if err := json.Unmarshal(wg.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]int{"Nawabi": 10, "Shahi": 10, "Sultaana": 10, "Azaadi": 2}
	for _, e := range inv {
		if want[e.ProductID] != e.Stock {
			t.Fatalf("unexpected inventory: %+v", inv)
		}
	}

	orders, err := st2.Orders(context.Background())
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 4 {
		t.Fatalf("expected 4 orders after restart, got %d", len(orders))
	}
	for _, o := range orders {
		if o.ProductID != "Azaadi" || o.Quantity != 2 || o.Rating != model.DefaultRating {
			t.Fatalf("unexpected order: %+v", o)
		}
	}
}
