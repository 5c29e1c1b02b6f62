package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// ListPurchases returns the user's purchase history, oldest first.
func (s *Store) ListPurchases(_ context.Context, userID string) ([]model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.purchases[userID]
	out := make([]model.Purchase, 0, len(history))
	for _, p := range history {
		out = append(out, clonePurchase(p))
	}
	return out, nil
}

// GetPurchase returns one of the user's purchases. A purchase id owned by a
// different user is a plain NotFound.
func (s *Store) GetPurchase(_ context.Context, userID, purchaseID string) (*model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.purchases[userID] {
		if p.ID == purchaseID {
			cp := clonePurchase(p)
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("purchase", purchaseID)
}

// CommitCheckout applies the checkout in one critical section:
//
//  1. Re-verify every product under the lock (still present, still
//     available, not the buyer's own). The service already validated, but a
//     request racing between validation and commit must not slip through.
//  2. Create the purchase record with its computed total.
//  3. Mark every purchased product sold. Unit-only inventory: any quantity
//     marks the product fully sold.
//  4. Clear the buyer's cart.
//
// If step 1 fails, nothing is mutated — rejection always leaves product
// statuses and the cart exactly as they were.
func (s *Store) CommitCheckout(_ context.Context, userID string, items []model.PurchaseItem) (*model.Purchase, error) {
	if len(items) == 0 {
		return nil, apperror.ValidationFailed("cart", "Cart is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	indices := make([]int, len(items))
	for n, item := range items {
		i := s.productIndex(item.ProductID)
		if i < 0 {
			return nil, apperror.Conflict(
				fmt.Sprintf("Product %s is no longer available", item.ProductID))
		}
		p := &s.products[i]
		if p.Status != model.StatusAvailable {
			return nil, apperror.Conflict(
				fmt.Sprintf("Product %q is no longer available", p.Title))
		}
		if p.SellerID == userID {
			return nil, apperror.Conflict(
				fmt.Sprintf("You cannot purchase your own product: %q", p.Title))
		}
		indices[n] = i
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	purchase := model.Purchase{
		ID:           xid.New().String(),
		UserID:       userID,
		Items:        append([]model.PurchaseItem(nil), items...),
		Total:        total,
		PurchaseDate: time.Now(),
	}
	s.purchases[userID] = append(s.purchases[userID], purchase)

	now := time.Now()
	for _, i := range indices {
		s.products[i].Status = model.StatusSold
		s.products[i].UpdatedAt = now
	}

	delete(s.carts, userID)

	cp := clonePurchase(purchase)
	return &cp, nil
}
