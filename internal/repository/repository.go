// Package repository declares the storage interfaces the services program
// against. Two implementations exist: memory (the default — everything lives
// in process memory, nothing survives a restart) and sqlite (persistent,
// with a real transaction around checkout).
//
// CONTRACT NOTES:
//   - A lookup that misses returns apperror.ErrNotFound, never a nil record.
//   - Implementations return copies; mutating a returned record does not
//     change stored state. This is what makes purchase snapshots immutable.
//   - Every method takes a context so the sqlite backend can honour request
//     cancellation; the memory backend ignores it.
package repository

import (
	"context"

	"github.com/mkarim/marketplace/internal/model"
)

// UserRepository stores user accounts.
//
// CreateUser does NOT enforce email uniqueness — the services check
// GetUserByEmail first, and the sqlite schema carries a UNIQUE constraint as
// a backstop.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser merges non-nil fields into the stored record.
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
}

// ProductRepository stores listings.
type ProductRepository interface {
	// CreateProduct assigns ID and timestamps; Status defaults to available
	// when unset.
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductsBySeller(ctx context.Context, sellerID string) ([]model.Product, error)
	// SearchProducts is a case-insensitive substring match against title OR
	// description. No ranking, no tokenization.
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	FilterProductsByCategory(ctx context.Context, category string) ([]model.Product, error)
	// UpdateProduct merges non-nil fields and bumps UpdatedAt.
	UpdateProduct(ctx context.Context, id string, upd model.ProductUpdate) (*model.Product, error)
	// DeleteProduct hard-removes the listing and returns the removed record.
	DeleteProduct(ctx context.Context, id string) (*model.Product, error)
}

// CartRepository stores per-user carts. Carts are created lazily: GetCart on
// a user with no cart returns an empty slice and persists nothing.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) ([]model.CartItem, error)
	// AddToCart adds one unit: an existing line for the product has its
	// quantity incremented, otherwise a fresh line with quantity 1 is
	// appended. Returns the full updated cart.
	AddToCart(ctx context.Context, userID, productID string) ([]model.CartItem, error)
	// RemoveFromCart drops the line for productID (if any) and returns the
	// updated cart.
	RemoveFromCart(ctx context.Context, userID, productID string) ([]model.CartItem, error)
	// SetCartQuantity replaces the line's quantity in place. The caller
	// validates quantity >= 1; the line must exist.
	SetCartQuantity(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)
	ClearCart(ctx context.Context, userID string) error
}

// PurchaseRepository stores immutable purchase records and owns the atomic
// checkout commit.
type PurchaseRepository interface {
	ListPurchases(ctx context.Context, userID string) ([]model.Purchase, error)
	// GetPurchase is scoped to the buyer: a purchase id belonging to a
	// different user resolves to ErrNotFound, not ErrForbidden, so ids
	// cannot be probed.
	GetPurchase(ctx context.Context, userID, purchaseID string) (*model.Purchase, error)
	// CommitCheckout applies the whole checkout as one unit: create the
	// purchase record, mark every referenced product sold, clear the
	// buyer's cart. If any product is no longer available the commit fails
	// with ErrConflict and NOTHING is mutated — no partial fulfilment, no
	// compensating actions needed.
	CommitCheckout(ctx context.Context, userID string, items []model.PurchaseItem) (*model.Purchase, error)
}

// SessionRepository maps opaque tokens to user ids.
//
// Tokens have no expiry unless the store was configured with a TTL; the
// original design kept them alive until logout and callers may depend on
// that, so expiry is strictly opt-in.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID string) (string, error)
	// ResolveSession returns the owning user id, or ErrNotFound for unknown
	// (or expired) tokens.
	ResolveSession(ctx context.Context, token string) (string, error)
	// DeleteSession removes the mapping. Idempotent: returns false when the
	// token was already absent.
	DeleteSession(ctx context.Context, token string) (bool, error)
}

// Store bundles all repositories. Both backends implement it; the server
// wires whichever one configuration selects.
type Store interface {
	UserRepository
	ProductRepository
	CartRepository
	PurchaseRepository
	SessionRepository
}
