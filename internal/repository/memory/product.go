package memory

import (
	"context"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// CreateProduct assigns id and timestamps and stores the listing. Status
// defaults to available when the caller left it empty.
func (s *Store) CreateProduct(_ context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = xid.New().String()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = model.StatusAvailable
	}
	s.products = append(s.products, *product)
	return nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, apperror.NotFound("product", id)
	}
	p := s.products[i]
	return &p, nil
}

// ListProducts returns every listing, in insertion order.
func (s *Store) ListProducts(_ context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Product(nil), s.products...), nil
}

func (s *Store) ListProductsBySeller(_ context.Context, sellerID string) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Product{}
	for i := range s.products {
		if s.products[i].SellerID == sellerID {
			out = append(out, s.products[i])
		}
	}
	return out, nil
}

// SearchProducts does a case-insensitive substring match on title OR
// description — pure containment, nothing cleverer.
func (s *Store) SearchProducts(_ context.Context, query string) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	out := []model.Product{}
	for i := range s.products {
		p := &s.products[i]
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Store) FilterProductsByCategory(_ context.Context, category string) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Product{}
	for i := range s.products {
		if s.products[i].Category == category {
			out = append(out, s.products[i])
		}
	}
	return out, nil
}

// UpdateProduct merges the non-nil fields and bumps UpdatedAt. SellerID and
// Status are never touched here — status only changes through checkout.
func (s *Store) UpdateProduct(_ context.Context, id string, upd model.ProductUpdate) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, apperror.NotFound("product", id)
	}

	p := &s.products[i]
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Condition != nil {
		p.Condition = *upd.Condition
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	p.UpdatedAt = time.Now()

	out := *p
	return &out, nil
}

// DeleteProduct hard-removes the listing. Cart lines that still reference it
// are intentionally left in place; the cart view drops them at read time.
func (s *Store) DeleteProduct(_ context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, apperror.NotFound("product", id)
	}

	removed := s.products[i]
	s.products = append(s.products[:i], s.products[i+1:]...)
	return &removed, nil
}
