//go:build integration

package integration

import (
	"bytes"
	"net/http"
	"testing"
)

// Benchmark for POST /orders; most requests end in 409 once stock runs out,
// which still exercises the locked commit path.
// To run: go test -tags integration -bench=. ./test/integration -run ^$
func BenchmarkPostOrders(b *testing.B) {
	u := baseURL()
	client := &http.Client{}
	body := []byte(orderBody("Nawabi", 1))
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r, _ := http.NewRequest(http.MethodPost, u+"/orders", bytes.NewBuffer(body))
			r.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(r)
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})
}
