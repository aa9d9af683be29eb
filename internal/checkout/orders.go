package checkout

import (
	"context"
	"fmt"

	"storefront-gateway/internal/model"
)

// FetchOrders lists a user's orders for display. Order state is never
// mutated from this side.
func (o *Orchestrator) FetchOrders(ctx context.Context, userID string) ([]model.Order, error) {
	var orders []model.Order
	if err := o.api.Get(ctx, "/orders/"+userID, &orders); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return orders, nil
}
