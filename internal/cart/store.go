// Package cart caches the backend's cart snapshot and funnels every mutation
// through it. The backend stays the source of truth: after a mutation the
// local snapshot only ever holds what the server confirmed.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/dto"
	"storefront-gateway/internal/model"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

var (
	// ErrAuthRequired means the caller must be sent to the registration
	// view; the request was never issued.
	ErrAuthRequired = errors.New("cart: authentication required")
	// ErrInvalidQuantity rejects out-of-range quantities before any
	// network I/O happens.
	ErrInvalidQuantity = errors.New("cart: quantity must be between " +
		strconv.Itoa(MinQuantity) + " and " + strconv.Itoa(MaxQuantity))
)

// AuthChecker is what the store needs from the session: whether a usable
// identity exists right now.
type AuthChecker interface {
	Authenticated() bool
}

type Store struct {
	api  *apiclient.Client
	auth AuthChecker

	mu   sync.Mutex
	cart model.Cart

	// Mutations on the same product line are serialized in issue order, so
	// the last request wins rather than the last response to land.
	linesMu sync.Mutex
	lines   map[string]*sync.Mutex
}

func NewStore(api *apiclient.Client, auth AuthChecker) *Store {
	return &Store{
		api:   api,
		auth:  auth,
		lines: make(map[string]*sync.Mutex),
	}
}

// Snapshot returns a copy of the last confirmed cart.
func (s *Store) Snapshot() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.cart
	out.ProductsInCart = append([]model.CartLine(nil), s.cart.ProductsInCart...)
	return out
}

// Fetch replaces the whole snapshot with the backend's cart for userID.
// Called whenever the active identity becomes available or changes.
func (s *Store) Fetch(ctx context.Context, userID string) (model.Cart, error) {
	var resp dto.CartEnvelope
	if err := s.api.Get(ctx, "/carts/"+userID, &resp); err != nil {
		return model.Cart{}, fmt.Errorf("fetch cart: %w", err)
	}
	s.mu.Lock()
	s.cart = resp.Cart
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// Add puts quantity units of a product in the cart. The server decides merge
// semantics for a product already present, so its returned line list replaces
// ours wholesale. Anonymous calls fail before any request is made.
func (s *Store) Add(ctx context.Context, userID, productID string, quantity int) ([]model.CartLine, error) {
	if !s.auth.Authenticated() {
		return nil, ErrAuthRequired
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	unlock := s.lockLine(productID)
	defer unlock()

	var resp dto.AddToCartResponse
	err := s.api.Post(ctx, "/carts/add", dto.AddToCartRequest{
		ProductID:  productID,
		ProductQty: quantity,
		UserID:     userID,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	s.mu.Lock()
	s.cart.ProductsInCart = resp.Data.ProductsInCart
	s.mu.Unlock()
	return resp.Data.ProductsInCart, nil
}

// UpdateQuantity sets a line's quantity. Out-of-range values are rejected
// here; on failure the previous quantity stays.
func (s *Store) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	unlock := s.lockLine(productID)
	defer unlock()

	err := s.api.Put(ctx, "/carts/update-qty", dto.UpdateQuantityRequest{
		ProductID:  productID,
		ProductQty: quantity,
		UserID:     userID,
	}, nil)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}

	s.mu.Lock()
	for i := range s.cart.ProductsInCart {
		if s.cart.ProductsInCart[i].ProductID == productID {
			s.cart.ProductsInCart[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Remove deletes a line. If the backend returns the updated cart that wins;
// a bare ack just drops the line locally.
func (s *Store) Remove(ctx context.Context, userID, productID string) error {
	unlock := s.lockLine(productID)
	defer unlock()

	var resp dto.RemoveFromCartResponse
	if err := s.api.Delete(ctx, "/carts/remove/"+userID+"/"+productID, &resp); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}

	s.mu.Lock()
	if resp.Cart != nil {
		s.cart = *resp.Cart
	} else {
		kept := s.cart.ProductsInCart[:0]
		for _, line := range s.cart.ProductsInCart {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		s.cart.ProductsInCart = kept
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) lockLine(productID string) func() {
	s.linesMu.Lock()
	mu, ok := s.lines[productID]
	if !ok {
		mu = &sync.Mutex{}
		s.lines[productID] = mu
	}
	s.linesMu.Unlock()
	mu.Lock()
	return mu.Unlock
}
