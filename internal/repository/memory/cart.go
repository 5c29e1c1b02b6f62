package memory

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// GetCart returns the user's cart lines, or an empty slice if no cart
// exists yet. Lazy creation: reading never persists anything.
func (s *Store) GetCart(_ context.Context, userID string) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.CartItem{}, s.carts[userID]...), nil
}

// AddToCart adds one unit of the product. An existing line is merged by
// incrementing its quantity — at most one line per product, always.
func (s *Store) AddToCart(_ context.Context, userID, productID string) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	merged := false
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, model.CartItem{
			ID:        xid.New().String(),
			ProductID: productID,
			Quantity:  1,
			AddedAt:   time.Now(),
		})
	}
	s.carts[userID] = cart

	return append([]model.CartItem{}, cart...), nil
}

// RemoveFromCart drops every line matching productID (at most one, by
// invariant) and returns the updated cart. Removing an absent product is
// not an error.
func (s *Store) RemoveFromCart(_ context.Context, userID, productID string) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	filtered := cart[:0]
	for _, item := range cart {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	s.carts[userID] = filtered

	return append([]model.CartItem{}, filtered...), nil
}

// SetCartQuantity replaces the line's quantity in place.
func (s *Store) SetCartQuantity(_ context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity = quantity
			item := cart[i]
			return &item, nil
		}
	}
	return nil, apperror.NotFoundMsg("Item not found in cart")
}

// ClearCart resets the user's cart to empty.
func (s *Store) ClearCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}
