// Package coupon verifies voucher codes against the backend. The resolver
// keeps nothing but the last resolved discount for the current checkout
// session; a new code fully replaces it.
package coupon

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/dto"
	"storefront-gateway/internal/model"
)

const (
	invalidCouponMessage = "Invalid coupon code"
	verifyErrorMessage   = "Error verifying coupon"
)

type Resolver struct {
	api *apiclient.Client

	mu      sync.Mutex
	current model.Discount
}

func NewResolver(api *apiclient.Client) *Resolver {
	return &Resolver{api: api}
}

// Verify resolves a code to a discount. A previously applied discount stays
// in place until the new outcome is known, then is replaced whatever that
// outcome is: the rejection and the failure paths both land on zero percent.
// The returned error is non-nil only for transport/server failures; an
// invalid code is a normal outcome.
func (r *Resolver) Verify(ctx context.Context, code string) (model.Discount, error) {
	code = strings.TrimSpace(code)

	var resp dto.VerifyCouponResponse
	err := r.api.Post(ctx, "/coupons/verify-coupon", dto.VerifyCouponRequest{Code: code}, &resp)

	var next model.Discount
	switch {
	case err != nil:
		next = model.Discount{Message: verifyErrorMessage}
	case resp.Message == invalidCouponMessage || resp.DiscountPercentage == 0:
		next = model.Discount{Message: invalidCouponMessage}
	default:
		next = model.Discount{
			Code:       code,
			Percentage: resp.DiscountPercentage,
			Message:    fmt.Sprintf("%d%% discount applied!", resp.DiscountPercentage),
		}
	}

	r.mu.Lock()
	r.current = next
	r.mu.Unlock()

	if err != nil {
		return next, fmt.Errorf("verify coupon: %w", err)
	}
	return next, nil
}

// Current returns the last resolved discount.
func (r *Resolver) Current() model.Discount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Reset drops any applied discount, as when the user edits the voucher field.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = model.Discount{}
}
