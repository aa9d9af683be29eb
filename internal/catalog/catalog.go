// Package catalog fetches the product list with a short-lived cache. Product
// fetches are the one place cancellation matters: a view torn down before the
// response arrives passes its context cancellation through and the caller
// treats context.Canceled as a silent no-op.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/model"
)

const cacheTTL = 5 * time.Minute

type Service struct {
	api *apiclient.Client

	mu        sync.Mutex
	cached    []model.Product
	fetchedAt time.Time
}

func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < cacheTTL {
		out := append([]model.Product(nil), s.cached...)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	var products []model.Product
	if err := s.api.Get(ctx, "/products", &products); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	s.mu.Lock()
	s.cached = products
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return append([]model.Product(nil), products...), nil
}

func (s *Service) ProductByID(ctx context.Context, productID string) (model.Product, error) {
	var product model.Product
	if err := s.api.Get(ctx, "/products/"+productID, &product); err != nil {
		return model.Product{}, fmt.Errorf("fetch product %s: %w", productID, err)
	}
	return product, nil
}
