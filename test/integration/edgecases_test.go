//go:build integration

package integration

import (
	"bytes"
	"net/http"
	"testing"
)

func TestIntegration_RejectedOrders(t *testing.T) {
	waitReady(t)
	u := baseURL()

	cases := []struct {
		name, body, ctype string
		want              int
	}{
		{"missing_customer", `{"product":"Nawabi"}`, "application/json", http.StatusBadRequest},
		{"zero_quantity", orderBody("Nawabi", 0), "application/json", http.StatusBadRequest},
		{"bad_rating", `{"customer":{"name":"a","phone":"1","address":"x"},"product":"Nawabi","rating":9}`, "application/json", http.StatusBadRequest},
		{"unknown_product", orderBody("Caviar", 1), "application/json", http.StatusNotFound},
		{"unknown_field", `{"product":"Nawabi","coupon":"x"}`, "application/json", http.StatusBadRequest},
		{"malformed_json", `{"product":`, "application/json", http.StatusBadRequest},
		{"wrong_media_type", `{}`, "text/plain", http.StatusUnsupportedMediaType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, u+"/orders", bytes.NewBufferString(tc.body))
			r.Header.Set("Content-Type", tc.ctype)
			resp, err := http.DefaultClient.Do(r)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
			}
		})
	}
}

func TestIntegration_AdminRoutesNeedToken(t *testing.T) {
	waitReady(t)
	for _, path := range []string{"/admin/report", "/admin/orders/x/invoice"} {
		resp, err := http.Get(baseURL() + path)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.StatusCode)
		}
	}
}
