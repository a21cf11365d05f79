package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-intake/internal/auth"
	"github.com/fairyhunter13/storefront-intake/internal/catalog"
	"github.com/fairyhunter13/storefront-intake/internal/config"
	httpopenapi "github.com/fairyhunter13/storefront-intake/internal/http/openapi"
	"github.com/fairyhunter13/storefront-intake/internal/intake"
	"github.com/fairyhunter13/storefront-intake/internal/invoice"
	"github.com/fairyhunter13/storefront-intake/internal/model"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
	"github.com/fairyhunter13/storefront-intake/internal/queue"
	"github.com/fairyhunter13/storefront-intake/internal/report"
	"github.com/fairyhunter13/storefront-intake/internal/store"
)

// Deps are the collaborators the HTTP layer renders and drives.
type Deps struct {
	Catalog  *catalog.Catalog
	Intake   *intake.Service
	View     *report.View
	Store    store.Store
	Sessions *auth.Sessions
	// Signals is optional; it only feeds /debug/metrics.
	Signals *queue.Manager
}

type App struct {
	Cfg config.Config
	Deps

	closing   atomic.Bool
	started   time.Time
	committed atomic.Uint64
	rejected  atomic.Uint64
}

type orderPayload struct {
	Customer model.Customer `json:"customer"`
	Product  string         `json:"product"`
	Quantity *int           `json:"quantity,omitempty"`
	Rating   int            `json:"rating,omitempty"`
	Referral model.Referral `json:"referral"`
}

type orderAck struct {
	Status    string            `json:"status"`
	RequestID string            `json:"request_id"`
	Message   string            `json:"message"`
	Order     model.OrderRecord `json:"order"`
}

func NewApp(cfg config.Config, deps Deps) *App {
	return &App{Cfg: cfg, Deps: deps, started: time.Now()}
}

// StartShutdown makes POST /orders answer 503. Orders already in flight
// finish and may still raise low-stock signals.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) postOrderHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	var p orderPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	qty := model.DefaultQuantity
	if p.Quantity != nil {
		qty = *p.Quantity
	}
	rec, err := a.Intake.Submit(r.Context(), model.OrderRequest{
		Customer: p.Customer,
		Product:  p.Product,
		Quantity: qty,
		Rating:   p.Rating,
		Referral: p.Referral,
	})
	if err != nil {
		a.rejected.Add(1)
		writeDomainError(w, r, err)
		return
	}
	a.committed.Add(1)
	name := rec.ProductID
	if prod, ok := a.Catalog.Get(rec.ProductID); ok {
		name = prod.Name
	}
	writeJSON(w, http.StatusCreated, orderAck{
		Status:    "created",
		RequestID: RequestIDFromContext(r.Context()),
		Message:   fmt.Sprintf("Thank you, %s! We'll deliver your %s soon.", rec.Customer.Name, name),
		Order:     rec,
	})
}

func (a *App) catalogHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Catalog.Products())
}

func (a *App) inventoryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.View.CurrentInventory())
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *App) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := a.Sessions.Login(req.Username, req.Password)
	if err != nil {
		obs.Logger.Warn("admin_login_failed", "username", req.Username, "request_id", RequestIDFromContext(r.Context()))
		writeDomainError(w, r, err)
		return
	}
	obs.Logger.Info("admin_login", "username", sess.Username)
	writeJSON(w, http.StatusOK, sess)
}

func (a *App) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if sess, ok := SessionFromContext(r.Context()); ok {
		a.Sessions.Logout(sess.Token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) reportHandler(w http.ResponseWriter, r *http.Request) {
	s, err := a.View.Summary(r.Context(), a.Intake.Threshold())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type restockRequest struct {
	Stock *int `json:"stock"`
}

func (a *App) restockHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("product_id")
	var req restockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Stock == nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "stock is required")
		return
	}
	if err := a.Intake.Restock(r.Context(), id, *req.Stock); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.InventoryEntry{ProductID: id, Stock: *req.Stock})
}

func (a *App) invoiceHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := store.FindOrder(r.Context(), a.Store, r.PathValue("order_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	prod, ok := a.Catalog.Get(rec.ProductID)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "unknown_product", fmt.Sprintf("product %q is no longer in the catalog", rec.ProductID))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="invoice-%s.txt"`, rec.OrderID))
	if err := invoice.Render(w, a.Cfg.StoreName, rec, prod); err != nil {
		obs.Logger.Error("invoice_render_failed", "order_id", rec.OrderID, "error", err)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"orders_committed": a.committed.Load(),
		"orders_rejected":  a.rejected.Load(),
		"uptime_sec":       time.Since(a.started).Seconds(),
	}
	if a.Signals != nil {
		m["signals"] = a.Signals.Metrics()
		m["signal_workers"] = a.Signals.WorkerCount()
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Storefront API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
