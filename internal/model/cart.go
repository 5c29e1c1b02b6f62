package model

import "time"

// CartItem is one line of a user's cart: a product reference plus a quantity.
//
// Invariant: a cart holds at most one line per product. Adding a product that
// is already present increments the existing line's quantity instead of
// appending a duplicate (enforced by the cart repositories).
type CartItem struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"` // always >= 1
	AddedAt   time.Time `json:"addedAt"`
}
