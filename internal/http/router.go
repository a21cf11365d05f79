package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", app.postOrderHandler)
	mux.HandleFunc("GET /catalog", app.catalogHandler)
	mux.HandleFunc("GET /inventory", app.inventoryHandler)

	mux.HandleFunc("POST /admin/login", app.loginHandler)
	mux.Handle("POST /admin/logout", app.requireAdmin(http.HandlerFunc(app.logoutHandler)))
	mux.Handle("GET /admin/report", app.requireAdmin(http.HandlerFunc(app.reportHandler)))
	mux.Handle("PUT /admin/inventory/{product_id}", app.requireAdmin(http.HandlerFunc(app.restockHandler)))
	mux.Handle("GET /admin/orders/{order_id}/invoice", app.requireAdmin(http.HandlerFunc(app.invoiceHandler)))

	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}
