// Package checkout turns a validated cart, address and discount into a
// submitted order and drives the external payment redirect plus the
// return-trip verification.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/dto"
	"storefront-gateway/internal/localstore"
	"storefront-gateway/internal/model"
)

type Status string

const (
	StatusCollectingAddress   Status = "collecting_address"
	StatusReadyToPay          Status = "ready_to_pay"
	StatusSubmitting          Status = "submitting"
	StatusRedirectedToPayment Status = "redirected_to_payment"
	StatusVerifyingPayment    Status = "verifying_payment"
	StatusPaymentConfirmed    Status = "payment_confirmed"
	StatusPaymentFailed       Status = "payment_failed"
)

// How long the confirmation stays on screen before the UI moves the user to
// order history.
const ConfirmRedirectDelay = 5 * time.Second

const paymentSuccess = "success"

// ValidationError is a client-side precondition failure; nothing was sent to
// the backend.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type SubmitInput struct {
	Session model.Session
	Cart    model.Cart
	Address model.Address
}

// VerifyResult is what the return callback hands the UI: the outcome, and on
// success where to go next and after how long.
type VerifyResult struct {
	Reference     string
	Status        Status
	Replayed      bool
	RedirectTo    string
	RedirectAfter time.Duration
}

type Orchestrator struct {
	api         *apiclient.Client
	local       *localstore.Store
	callbackURL string

	mu     sync.Mutex
	status Status
}

func NewOrchestrator(api *apiclient.Client, local *localstore.Store, callbackURL string) *Orchestrator {
	return &Orchestrator{
		api:         api,
		local:       local,
		callbackURL: callbackURL,
		status:      StatusCollectingAddress,
	}
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// SetAddress recomputes readiness from the address on every edit and, when
// the save opt-in is on, overwrites the persisted copy.
func (o *Orchestrator) SetAddress(addr model.Address, save bool) error {
	o.mu.Lock()
	if addr.Valid() {
		o.status = StatusReadyToPay
	} else {
		o.status = StatusCollectingAddress
	}
	o.mu.Unlock()

	if err := o.local.SetJSON(localstore.KeyAddressOptIn, save); err != nil {
		return fmt.Errorf("persist address preference: %w", err)
	}
	if save {
		if err := o.local.SetJSON(localstore.KeySavedAddress, addr); err != nil {
			return fmt.Errorf("persist address: %w", err)
		}
	} else if err := o.local.Delete(localstore.KeySavedAddress); err != nil {
		return fmt.Errorf("drop saved address: %w", err)
	}
	return nil
}

// SavedAddress loads the persisted address and the opt-in flag.
func (o *Orchestrator) SavedAddress() (model.Address, bool, error) {
	var save bool
	if _, err := o.local.GetJSON(localstore.KeyAddressOptIn, &save); err != nil {
		return model.Address{}, false, err
	}
	var addr model.Address
	if _, err := o.local.GetJSON(localstore.KeySavedAddress, &addr); err != nil {
		return model.Address{}, save, err
	}
	return addr, save, nil
}

// Submit runs the order-creation and payment-initialization sequence and
// returns the external authorization URL the buyer must be redirected to.
// The empty-cart guard comes before address validation.
func (o *Orchestrator) Submit(ctx context.Context, in SubmitInput) (string, error) {
	if len(in.Cart.ProductsInCart) == 0 || in.Cart.Total <= 0 {
		return "", &ValidationError{Msg: "cart is empty"}
	}
	if !in.Address.Valid() {
		return "", &ValidationError{Msg: "shipping address is incomplete"}
	}

	o.mu.Lock()
	o.status = StatusSubmitting
	o.mu.Unlock()

	addressJSON, err := json.Marshal(in.Address)
	if err != nil {
		return "", fmt.Errorf("serialize address: %w", err)
	}

	var order dto.CheckoutResponse
	err = o.api.Post(ctx, "/orders/checkout", dto.CheckoutRequest{
		UserID:        in.Session.UserID,
		CartID:        in.Cart.CartID,
		Address:       string(addressJSON),
		Email:         in.Session.Email,
		PaymentMethod: "Online",
		Name:          in.Session.Name,
	}, &order)
	if err != nil {
		o.setStatus(StatusReadyToPay)
		return "", fmt.Errorf("create order: %w", err)
	}

	payment := map[string]any{"callbackUrl": o.callbackURL}
	for k, v := range order.Data {
		payment[k] = v
	}

	var initialized dto.ProcessPaymentResponse
	if err := o.api.Post(ctx, "/payments/process-payment", payment, &initialized); err != nil {
		o.setStatus(StatusReadyToPay)
		return "", fmt.Errorf("initialize payment: %w", err)
	}
	if initialized.Data.AuthorizationURL == "" {
		o.setStatus(StatusReadyToPay)
		return "", fmt.Errorf("initialize payment: no authorization url in response")
	}

	o.setStatus(StatusRedirectedToPayment)
	return initialized.Data.AuthorizationURL, nil
}

// VerifyReturn resolves the reference the gateway sent back on the callback
// URL. A reference that already confirmed replays the stored outcome without
// another backend call, so refreshing the return page cannot double-process.
// The cart is never cleared here; that is the backend's job on success.
func (o *Orchestrator) VerifyReturn(ctx context.Context, reference string) VerifyResult {
	if status, ok, err := o.local.PaymentOutcome(reference); err == nil && ok {
		result := VerifyResult{Reference: reference, Status: StatusPaymentFailed, Replayed: true}
		if status == paymentSuccess {
			result.Status = StatusPaymentConfirmed
			result.RedirectTo = "/orders"
			result.RedirectAfter = ConfirmRedirectDelay
		}
		o.setStatus(result.Status)
		return result
	}

	o.setStatus(StatusVerifyingPayment)

	var resp dto.VerifyPaymentResponse
	err := o.api.Get(ctx, "/payments/verify-payment/"+reference, &resp)
	if err != nil || resp.Status != paymentSuccess {
		if err != nil {
			log.Printf("verify payment %s: %v", reference, err)
		}
		o.setStatus(StatusPaymentFailed)
		return VerifyResult{Reference: reference, Status: StatusPaymentFailed}
	}

	if err := o.local.MarkPaymentProcessed(reference, paymentSuccess); err != nil {
		log.Printf("record payment %s: %v", reference, err)
	}
	o.setStatus(StatusPaymentConfirmed)
	return VerifyResult{
		Reference:     reference,
		Status:        StatusPaymentConfirmed,
		RedirectTo:    "/orders",
		RedirectAfter: ConfirmRedirectDelay,
	}
}

func (o *Orchestrator) setStatus(status Status) {
	o.mu.Lock()
	o.status = status
	o.mu.Unlock()
}
