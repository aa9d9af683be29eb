package coupon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/dto"
)

func newResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewResolver(apiclient.New(&config.Backend{BaseURL: srv.URL}))
}

func couponHandler(codes map[string]int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.VerifyCouponRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		pct, ok := codes[req.Code]
		if !ok {
			json.NewEncoder(w).Encode(dto.VerifyCouponResponse{Message: "Invalid coupon code"})
			return
		}
		json.NewEncoder(w).Encode(dto.VerifyCouponResponse{DiscountPercentage: pct})
	}
}

func TestVerifyValidCode(t *testing.T) {
	r := newResolver(t, couponHandler(map[string]int{"SAVE10": 10}))

	d, err := r.Verify(context.Background(), "SAVE10")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if d.Code != "SAVE10" || d.Percentage != 10 {
		t.Errorf("discount = %+v", d)
	}
	if d.Message != "10% discount applied!" {
		t.Errorf("message = %q", d.Message)
	}
	if got := r.Current(); got != d {
		t.Errorf("Current() = %+v, want %+v", got, d)
	}
}

func TestVerifyTrimsWhitespace(t *testing.T) {
	r := newResolver(t, couponHandler(map[string]int{"SAVE10": 10}))

	d, err := r.Verify(context.Background(), "  SAVE10  ")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if d.Code != "SAVE10" {
		t.Errorf("code = %q, want trimmed", d.Code)
	}
}

func TestVerifyInvalidCodeIsNotAnError(t *testing.T) {
	r := newResolver(t, couponHandler(map[string]int{"SAVE10": 10}))

	d, err := r.Verify(context.Background(), "BOGUS")
	if err != nil {
		t.Fatalf("invalid code must not surface an error, got %v", err)
	}
	if d.Percentage != 0 || d.Message != "Invalid coupon code" {
		t.Errorf("discount = %+v", d)
	}
}

func TestVerifyInvalidReplacesAppliedDiscount(t *testing.T) {
	r := newResolver(t, couponHandler(map[string]int{"SAVE10": 10}))

	if _, err := r.Verify(context.Background(), "SAVE10"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, err := r.Verify(context.Background(), "BOGUS"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got := r.Current(); got.Percentage != 0 || got.Code != "" {
		t.Errorf("stale discount survived rejection: %+v", got)
	}
}

func TestVerifyTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	r := NewResolver(apiclient.New(&config.Backend{BaseURL: srv.URL}))

	d, err := r.Verify(context.Background(), "SAVE10")
	if err == nil {
		t.Fatal("expected an error for an unreachable backend")
	}
	if d.Message != "Error verifying coupon" || d.Percentage != 0 {
		t.Errorf("discount = %+v", d)
	}
	if got := r.Current(); got != d {
		t.Errorf("Current() = %+v, want %+v", got, d)
	}
}

func TestVerifyServerRejectionReplacesDiscount(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := r.Verify(context.Background(), "SAVE10"); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if got := r.Current(); got.Message != "Error verifying coupon" {
		t.Errorf("Current() = %+v", got)
	}
}

func TestReset(t *testing.T) {
	r := newResolver(t, couponHandler(map[string]int{"SAVE10": 10}))

	if _, err := r.Verify(context.Background(), "SAVE10"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	r.Reset()
	if got := r.Current(); got.Percentage != 0 || got.Message != "" {
		t.Errorf("Reset left %+v behind", got)
	}
}
