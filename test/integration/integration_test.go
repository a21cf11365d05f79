//go:build integration

// Black-box tests against a running storefront. Point BASE_URL at it and set
// ADMIN_USERNAME / ADMIN_PASSWORD to exercise the admin routes.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func waitReady(t testing.TB) {
	t.Helper()
	url := baseURL() + "/healthz"
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("service not ready")
}

type ack struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
	Order     struct {
		OrderID   string `json:"order_id"`
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Rating    int    `json:"rating"`
	} `json:"order"`
}

type entry struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

func orderBody(product string, qty int) string {
	return fmt.Sprintf(`{"customer":{"name":"Asha","phone":"555-0101","address":"12 Mill Road"},"product":%q,"quantity":%d}`, product, qty)
}

func send(t testing.TB, method, path, body, token string) *http.Response {
	t.Helper()
	r, err := http.NewRequest(method, baseURL()+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t testing.TB, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func stockOf(t testing.TB, product string) int {
	t.Helper()
	var inv []entry
	decode(t, send(t, http.MethodGet, "/inventory", "", ""), &inv)
	for _, e := range inv {
		if e.ProductID == product {
			return e.Stock
		}
	}
	t.Fatalf("product %s not in inventory", product)
	return 0
}

// adminToken logs in with ADMIN_USERNAME / ADMIN_PASSWORD or skips the test.
func adminToken(t testing.TB) string {
	t.Helper()
	pw := os.Getenv("ADMIN_PASSWORD")
	if pw == "" {
		t.Skip("ADMIN_PASSWORD not set")
	}
	user := os.Getenv("ADMIN_USERNAME")
	if user == "" {
		user = "admin"
	}
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, user, pw)
	resp := send(t, http.MethodPost, "/admin/login", body, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var s struct {
		Token string `json:"token"`
	}
	decode(t, resp, &s)
	return s.Token
}

func restock(t testing.TB, token, product string, stock int) {
	t.Helper()
	resp := send(t, http.MethodPut, "/admin/inventory/"+product, fmt.Sprintf(`{"stock":%d}`, stock), token)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restock: expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_OpenAPIServed(t *testing.T) {
	waitReady(t)
	resp, err := http.Get(baseURL() + "/openapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_DocsServed(t *testing.T) {
	waitReady(t)
	resp, err := http.Get(baseURL() + "/docs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(b), "swagger-ui") {
		t.Fatalf("expected swagger-ui docs page, got %d", resp.StatusCode)
	}
}

func TestIntegration_OrderDecrementsStock(t *testing.T) {
	waitReady(t)
	token := adminToken(t)
	restock(t, token, "Sultaana", 5)

	resp := send(t, http.MethodPost, "/orders", orderBody("Sultaana", 2), "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var a ack
	decode(t, resp, &a)
	if a.Order.ProductID != "Sultaana" || a.Order.Quantity != 2 || a.Order.OrderID == "" {
		t.Fatalf("unexpected ack: %+v", a)
	}
	if got := stockOf(t, "Sultaana"); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	inv := send(t, http.MethodGet, "/admin/orders/"+a.Order.OrderID+"/invoice", "", token)
	defer inv.Body.Close()
	b, _ := io.ReadAll(inv.Body)
	if inv.StatusCode != http.StatusOK || !strings.Contains(string(b), a.Order.OrderID) {
		t.Fatalf("invoice: got %d %q", inv.StatusCode, b)
	}
}

func TestIntegration_InsufficientStockLeavesStock(t *testing.T) {
	waitReady(t)
	token := adminToken(t)
	restock(t, token, "Azaadi", 1)

	resp := send(t, http.MethodPost, "/orders", orderBody("Azaadi", 2), "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var e struct {
		Available int `json:"available"`
	}
	decode(t, resp, &e)
	if e.Available != 1 {
		t.Fatalf("expected available 1, got %d", e.Available)
	}
	if got := stockOf(t, "Azaadi"); got != 1 {
		t.Fatalf("expected stock 1, got %d", got)
	}
}

func TestIntegration_MetricsCountOrders(t *testing.T) {
	waitReady(t)
	metrics := func() map[string]any {
		m := map[string]any{}
		decode(t, send(t, http.MethodGet, "/debug/metrics", "", ""), &m)
		return m
	}
	before := metrics()
	resp := send(t, http.MethodPost, "/orders", orderBody("Nowhere", 1), "")
	_ = resp.Body.Close()
	after := metrics()
	b, _ := before["orders_rejected"].(float64)
	a, _ := after["orders_rejected"].(float64)
	if a < b+1 {
		t.Fatalf("orders_rejected did not increase: before=%v after=%v", b, a)
	}
}
