package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"parley/internal/ratelimit"
)

func TestRateLimitMiddlewareDeniesOverLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter()
	handler := rateLimitMiddleware(limiter, 2, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
		if resp.Header.Get("X-RateLimit-Limit") != "2" {
			t.Fatalf("missing rate limit headers")
		}
	}

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get over limit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}
