package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubRateLimiterStore struct {
	counts map[string]int64
	err    error
}

func newStubRateLimiterStore() *stubRateLimiterStore {
	return &stubRateLimiterStore{counts: map[string]int64{}}
}

func (s *stubRateLimiterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func rateLimitedHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func postLogin(handler http.Handler, ip, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = ip + ":51234"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	store := newStubRateLimiterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 3, 0)

	var calls int
	handler := AuthRateLimit(policy, store, nil)(rateLimitedHandler(&calls))

	for i := 0; i < 3; i++ {
		if resp := postLogin(handler, "203.0.113.7", `{"email":"ada@example.com"}`); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, resp.Code)
		}
	}
	if calls != 3 {
		t.Fatalf("expected 3 handler calls, got %d", calls)
	}
}

func TestAuthRateLimitBlocksPerIP(t *testing.T) {
	store := newStubRateLimiterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)

	var calls int
	handler := AuthRateLimit(policy, store, nil)(rateLimitedHandler(&calls))

	postLogin(handler, "203.0.113.7", `{"email":"ada@example.com"}`)
	postLogin(handler, "203.0.113.7", `{"email":"ada@example.com"}`)

	resp := postLogin(handler, "203.0.113.7", `{"email":"ada@example.com"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if calls != 2 {
		t.Fatalf("blocked request should not reach handler, got %d calls", calls)
	}

	// a different address keeps its own counter
	if resp := postLogin(handler, "198.51.100.9", `{"email":"ada@example.com"}`); resp.Code != http.StatusOK {
		t.Fatalf("other ip: expected 200 got %d", resp.Code)
	}
}

func TestAuthRateLimitBlocksPerEmailAcrossIPs(t *testing.T) {
	store := newStubRateLimiterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)

	var calls int
	handler := AuthRateLimit(policy, store, nil)(rateLimitedHandler(&calls))

	postLogin(handler, "203.0.113.1", `{"email":"Ada@Example.com"}`)
	postLogin(handler, "203.0.113.2", `{"email":"ada@example.com"}`)

	// casing differences collapse onto the same counter
	resp := postLogin(handler, "203.0.113.3", `{"email":"ADA@EXAMPLE.COM"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}

	if resp := postLogin(handler, "203.0.113.4", `{"email":"grace@example.com"}`); resp.Code != http.StatusOK {
		t.Fatalf("other email: expected 200 got %d", resp.Code)
	}
}

func TestAuthRateLimitPreservesRequestBody(t *testing.T) {
	store := newStubRateLimiterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 5)

	var seen string
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		seen = string(payload)
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"email":"ada@example.com","password":"orchard-pass"}`
	if resp := postLogin(handler, "203.0.113.7", body); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seen != body {
		t.Fatalf("downstream handler saw %q", seen)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newStubRateLimiterStore()
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)

	var calls int
	handler := AuthRateLimit(policy, store, nil)(rateLimitedHandler(&calls))

	for i := 0; i < 10; i++ {
		if resp := postLogin(handler, "203.0.113.7", `{"email":"ada@example.com"}`); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("disabled policy should never touch the store, got %v", store.counts)
	}
}

func TestAuthRateLimitNilStorePassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 1)

	var calls int
	handler := AuthRateLimit(policy, nil, nil)(rateLimitedHandler(&calls))

	for i := 0; i < 5; i++ {
		if resp := postLogin(handler, "203.0.113.7", `{"email":"ada@example.com"}`); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	}
	if calls != 5 {
		t.Fatalf("expected 5 handler calls, got %d", calls)
	}
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:40000"
	req.Header.Set("X-Forwarded-For", " 203.0.113.50 , 10.0.0.2")

	if got := clientIP(req); got != "203.0.113.50" {
		t.Fatalf("expected forwarded ip, got %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote addr host, got %q", got)
	}
}
