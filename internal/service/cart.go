package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/repository"
)

// CartService handles the buyer's cart: availability rules on add, quantity
// updates, and the enriched view the frontend renders.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// CartLineView is a cart line joined with its product.
type CartLineView struct {
	model.CartItem
	Product *model.Product `json:"product"`
}

// CartView is the response shape of GET /api/cart.
type CartView struct {
	CartItems []CartLineView  `json:"cartItems"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// View returns the cart enriched with product details. Lines whose product
// has since been deleted are silently dropped from the VIEW only — storage
// keeps them, so a restored product would reappear.
func (s *CartService) View(ctx context.Context, userID string) (*CartView, error) {
	lines, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/cart: getting cart: %w", err)
	}

	view := &CartView{
		CartItems: []CartLineView{},
		Total:     decimal.Zero,
	}
	for _, line := range lines {
		product, err := s.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("service/cart: resolving product %s: %w", line.ProductID, err)
		}
		view.CartItems = append(view.CartItems, CartLineView{CartItem: line, Product: product})
		view.Total = view.Total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		view.ItemCount += line.Quantity
	}
	return view, nil
}

// Add puts one unit of the product in the cart. The product must exist, be
// available, and belong to someone else.
func (s *CartService) Add(ctx context.Context, userID, productID string) ([]model.CartItem, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != model.StatusAvailable {
		return nil, apperror.Conflict("Product is not available")
	}
	if product.SellerID == userID {
		return nil, apperror.Conflict("You cannot add your own product to cart")
	}

	cart, err := s.carts.AddToCart(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("service/cart: adding to cart: %w", err)
	}

	s.logger.Info("item added to cart",
		slog.String("userID", userID),
		slog.String("productID", productID),
	)
	return cart, nil
}

// Remove drops the product's line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, productID string) ([]model.CartItem, error) {
	cart, err := s.carts.RemoveFromCart(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("service/cart: removing from cart: %w", err)
	}
	return cart, nil
}

// Items returns the raw cart lines, without product enrichment. The cart
// mutation endpoints echo this back after a change.
func (s *CartService) Items(ctx context.Context, userID string) ([]model.CartItem, error) {
	return s.carts.GetCart(ctx, userID)
}

// SetQuantity replaces a line's quantity. Quantity is validated here — the
// stores trust their callers.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, apperror.ValidationFailed("quantity", "Quantity must be at least 1")
	}
	return s.carts.SetCartQuantity(ctx, userID, productID, quantity)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("service/cart: clearing cart: %w", err)
	}
	s.logger.Info("cart cleared", slog.String("userID", userID))
	return nil
}
