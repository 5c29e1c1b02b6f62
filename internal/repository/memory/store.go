// Package memory implements the repository interfaces entirely in process
// memory. This is the prototype's native storage model: slices for users and
// products (lookups are deliberate linear scans), maps keyed by user id for
// carts and purchase histories, and a map from token to session.
//
// CONCURRENCY:
// The original runtime serialized all access on a single thread. Go servers
// do not, so the store holds one mutex and every operation runs under it.
// That keeps the single-writer semantics — and because CommitCheckout does
// its validate-and-mutate under the same lock acquisition, checkout is
// atomic: two concurrent buyers cannot double-sell a product.
//
// Nothing here survives a restart. Use the sqlite backend for persistence.
package memory

import (
	"sync"
	"time"

	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/repository"
)

// Config holds store options.
type Config struct {
	// SessionTTL expires sessions this long after creation. Zero disables
	// expiry, matching the original behaviour where tokens live until
	// logout. Opt-in only — see DESIGN.md.
	SessionTTL time.Duration
}

type session struct {
	userID    string
	expiresAt time.Time // zero means never
}

// Store is the in-memory backend. Construct one per process (or per test)
// with New and inject it; there is no package-level singleton.
type Store struct {
	mu  sync.Mutex
	cfg Config

	users     []model.User
	products  []model.Product
	carts     map[string][]model.CartItem // userID -> cart lines
	purchases map[string][]model.Purchase // userID -> purchase history
	sessions  map[string]session          // token  -> session
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store.
func New(cfg Config) *Store {
	return &Store{
		cfg:       cfg,
		carts:     make(map[string][]model.CartItem),
		purchases: make(map[string][]model.Purchase),
		sessions:  make(map[string]session),
	}
}

// userIndex returns the position of the user with the given id, or -1.
// Callers must hold s.mu.
func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

// productIndex returns the position of the product with the given id, or -1.
// Callers must hold s.mu.
func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// clonePurchase deep-copies a purchase so callers can never reach the stored
// Items slice.
func clonePurchase(p model.Purchase) model.Purchase {
	cp := p
	cp.Items = append([]model.PurchaseItem(nil), p.Items...)
	return cp
}
