package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubIdempotencyStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (s *stubIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func orderHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"order":"placed"}}`))
	})
}

func postOrder(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/create", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestIdempotencyRequiresKeyOnMatchedRoutes(t *testing.T) {
	store := newStubIdempotencyStore()

	var calls int
	handler := Idempotency(store, nil)(orderHandler(&calls))

	resp := postOrder(handler, "", `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if calls != 0 {
		t.Fatalf("handler should not run without a key, got %d calls", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newStubIdempotencyStore()

	var calls int
	handler := Idempotency(store, nil)(orderHandler(&calls))

	first := postOrder(handler, "order-key-1", `{"note":"gift"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first request: expected 201 got %d", first.Code)
	}
	if calls != 1 {
		t.Fatalf("expected 1 handler call, got %d", calls)
	}

	second := postOrder(handler, "order-key-1", `{"note":"gift"}`)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201 got %d", second.Code)
	}
	if calls != 1 {
		t.Fatalf("replay must not reach the handler, got %d calls", calls)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("replay lost content type, got %q", ct)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newStubIdempotencyStore()

	var calls int
	handler := Idempotency(store, nil)(orderHandler(&calls))

	postOrder(handler, "order-key-2", `{"note":"gift"}`)

	resp := postOrder(handler, "order-key-2", `{"note":"changed"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if calls != 1 {
		t.Fatalf("mismatched replay must not reach the handler, got %d calls", calls)
	}
}

func TestIdempotencyOrderTTLIsAWeek(t *testing.T) {
	store := newStubIdempotencyStore()
	handler := Idempotency(store, nil)(orderHandler(new(int)))

	postOrder(handler, "order-key-3", `{}`)

	if len(store.ttls) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.ttls))
	}
	for _, ttl := range store.ttls {
		if ttl != criticalIdempotencyTTL {
			t.Fatalf("expected %s ttl, got %s", criticalIdempotencyTTL, ttl)
		}
	}
}

func TestIdempotencySkipsUnmatchedRoutes(t *testing.T) {
	store := newStubIdempotencyStore()

	var calls int
	handler := Idempotency(store, nil)(orderHandler(&calls))

	// no key and still passes, cart reads are not in the rule table
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected passthrough, got %d", resp.Code)
	}
	if calls != 1 {
		t.Fatalf("expected 1 handler call, got %d", calls)
	}
	if len(store.values) != 0 {
		t.Fatalf("unmatched route should not persist anything, got %v", store.values)
	}
}

func TestIdempotencyNilStorePassesThrough(t *testing.T) {
	var calls int
	handler := Idempotency(nil, nil)(orderHandler(&calls))

	if resp := postOrder(handler, "", `{}`); resp.Code != http.StatusCreated {
		t.Fatalf("expected passthrough, got %d", resp.Code)
	}
	if calls != 1 {
		t.Fatalf("expected 1 handler call, got %d", calls)
	}
}
