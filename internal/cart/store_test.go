package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/dto"
)

type stubAuth bool

func (a stubAuth) Authenticated() bool { return bool(a) }

type cartBackend struct {
	mu      sync.Mutex
	calls   int
	failing bool

	// Quantity updates in arrival order; the first one can be slowed down
	// so overlapping requests would answer out of order.
	updateQtys       []int
	firstUpdateDelay time.Duration
}

func (b *cartBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls++
		failing := b.failing
		b.mu.Unlock()

		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "backend exploded"})
			return
		}

		switch r.URL.Path {
		case "/carts/u1":
			json.NewEncoder(w).Encode(map[string]any{
				"cart": map[string]any{
					"cartId": "cart-1",
					"total":  350.0,
					"productsInCart": []map[string]any{
						{"productId": "p1", "name": "Mug", "price": 350, "quantity": 1},
					},
				},
			})
		case "/carts/add":
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"productsInCart": []map[string]any{
						{"productId": "p1", "name": "Mug", "price": 350, "quantity": 2},
					},
				},
			})
		case "/carts/update-qty":
			var req dto.UpdateQuantityRequest
			json.NewDecoder(r.Body).Decode(&req)
			b.mu.Lock()
			first := len(b.updateQtys) == 0
			b.updateQtys = append(b.updateQtys, req.ProductQty)
			delay := b.firstUpdateDelay
			b.mu.Unlock()
			if first && delay > 0 {
				time.Sleep(delay)
			}
			json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		default:
			// remove returns a bare ack
			json.NewEncoder(w).Encode(map[string]string{"message": "removed"})
		}
	}
}

func (b *cartBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *cartBackend) setFailing(failing bool) {
	b.mu.Lock()
	b.failing = failing
	b.mu.Unlock()
}

func (b *cartBackend) setFirstUpdateDelay(d time.Duration) {
	b.mu.Lock()
	b.firstUpdateDelay = d
	b.mu.Unlock()
}

func (b *cartBackend) updates() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.updateQtys...)
}

func newTestStore(t *testing.T, authed bool) (*Store, *cartBackend) {
	t.Helper()
	backend := &cartBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	api := apiclient.New(&config.Backend{BaseURL: srv.URL})
	return NewStore(api, stubAuth(authed)), backend
}

func TestAddRequiresAuthenticationBeforeAnyRequest(t *testing.T) {
	s, backend := newTestStore(t, false)

	_, err := s.Add(context.Background(), "", "p1", 1)
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if backend.callCount() != 0 {
		t.Errorf("anonymous add issued %d requests, want 0", backend.callCount())
	}
}

func TestUpdateQuantityClampRejectedClientSide(t *testing.T) {
	s, backend := newTestStore(t, true)

	for _, q := range []int{0, -1, 11, 100} {
		if err := s.UpdateQuantity(context.Background(), "u1", "p1", q); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
	if backend.callCount() != 0 {
		t.Errorf("out-of-range updates issued %d requests, want 0", backend.callCount())
	}

	// Boundary values go through.
	for _, q := range []int{1, 10} {
		if err := s.UpdateQuantity(context.Background(), "u1", "p1", q); err != nil {
			t.Errorf("quantity %d: %v", q, err)
		}
	}
	if backend.callCount() != 2 {
		t.Errorf("in-range updates issued %d requests, want 2", backend.callCount())
	}
}

func TestFetchReplacesSnapshot(t *testing.T) {
	s, _ := newTestStore(t, true)

	got, err := s.Fetch(context.Background(), "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.CartID != "cart-1" || got.Total != 350 || len(got.ProductsInCart) != 1 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestAddReplacesLineListWithServerTruth(t *testing.T) {
	s, _ := newTestStore(t, true)

	if _, err := s.Fetch(context.Background(), "u1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	lines, err := s.Add(context.Background(), "u1", "p1", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// The server merged the duplicate into quantity 2; ours must match.
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Errorf("lines = %+v", lines)
	}
	if snap := s.Snapshot(); snap.ProductsInCart[0].Quantity != 2 {
		t.Errorf("snapshot not updated: %+v", snap.ProductsInCart)
	}
}

func TestUpdateQuantityFailureRetainsPriorValue(t *testing.T) {
	s, backend := newTestStore(t, true)

	if _, err := s.Fetch(context.Background(), "u1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	backend.setFailing(true)
	err := s.UpdateQuantity(context.Background(), "u1", "p1", 5)
	if err == nil {
		t.Fatal("expected failure")
	}
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "backend exploded" {
		t.Errorf("error = %v", err)
	}
	if q := s.Snapshot().ProductsInCart[0].Quantity; q != 1 {
		t.Errorf("quantity after failed update = %d, want 1", q)
	}
}

func TestRemoveDropsLineOnBareAck(t *testing.T) {
	s, _ := newTestStore(t, true)

	if _, err := s.Fetch(context.Background(), "u1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := s.Remove(context.Background(), "u1", "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if lines := s.Snapshot().ProductsInCart; len(lines) != 0 {
		t.Errorf("lines after remove = %+v", lines)
	}
}

func TestRemoveFailureRetainsLine(t *testing.T) {
	s, backend := newTestStore(t, true)

	if _, err := s.Fetch(context.Background(), "u1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	backend.setFailing(true)
	if err := s.Remove(context.Background(), "u1", "p1"); err == nil {
		t.Fatal("expected failure")
	}
	if lines := s.Snapshot().ProductsInCart; len(lines) != 1 {
		t.Errorf("lines after failed remove = %+v", lines)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newTestStore(t, true)
	if _, err := s.Fetch(context.Background(), "u1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	snap := s.Snapshot()
	snap.ProductsInCart[0].Quantity = 99
	if q := s.Snapshot().ProductsInCart[0].Quantity; q != 1 {
		t.Errorf("mutating a snapshot leaked into the store: quantity %d", q)
	}
}

// The stub slows the earliest update down, so a store that applied responses
// in arrival order instead of issuing requests one at a time would end up
// with the first request's quantity overwriting every later one.
func TestConcurrentUpdatesOnSameLineSerialize(t *testing.T) {
	s, backend := newTestStore(t, true)
	if _, err := s.Fetch(context.Background(), "u1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	backend.setFirstUpdateDelay(50 * time.Millisecond)

	var wg sync.WaitGroup
	for q := 1; q <= 6; q++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			if err := s.UpdateQuantity(context.Background(), "u1", "p1", q); err != nil {
				t.Errorf("update to %d: %v", q, err)
			}
		}(q)
	}
	wg.Wait()

	sent := backend.updates()
	if len(sent) != 6 {
		t.Fatalf("updates reaching the backend = %d, want 6", len(sent))
	}
	last := sent[len(sent)-1]
	if got := s.Snapshot().ProductsInCart[0].Quantity; got != last {
		t.Errorf("quantity = %d, want %d (the request issued last)", got, last)
	}
}
