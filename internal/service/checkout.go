package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/repository"
)

// CheckoutService turns carts into purchases and serves purchase history.
type CheckoutService struct {
	carts     repository.CartRepository
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	logger    *slog.Logger
}

func NewCheckoutService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	purchases repository.PurchaseRepository,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		products:  products,
		purchases: purchases,
		logger:    logger,
	}
}

// PurchaseItemView is a purchased line plus the product's current record,
// when it still exists. The snapshot fields on the line itself are what was
// actually paid; Product is only for linking back to the listing.
type PurchaseItemView struct {
	model.PurchaseItem
	Product *model.Product `json:"product,omitempty"`
}

// PurchaseView is a purchase with its items enriched for display.
type PurchaseView struct {
	model.Purchase
	Items []PurchaseItemView `json:"items"`
}

// Checkout converts the user's whole cart into a purchase.
//
// Every line is validated first; any failure rejects the entire checkout and
// leaves cart, products and purchases untouched. The store's CommitCheckout
// re-validates under its own lock, so a product sold between our check and
// the commit still cannot be bought twice.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (*model.Purchase, error) {
	lines, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/checkout: getting cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, apperror.ValidationFailed("cart", "Cart is empty")
	}

	items := make([]model.PurchaseItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Conflict(
					fmt.Sprintf("Product %s is no longer available", line.ProductID))
			}
			return nil, fmt.Errorf("service/checkout: resolving product %s: %w", line.ProductID, err)
		}
		if product.Status != model.StatusAvailable {
			return nil, apperror.Conflict(
				fmt.Sprintf("Product %q is no longer available", product.Title))
		}
		if product.SellerID == userID {
			return nil, apperror.Conflict(
				fmt.Sprintf("You cannot purchase your own product: %q", product.Title))
		}

		items = append(items, model.PurchaseItem{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  line.Quantity,
			SellerID:  product.SellerID,
			Category:  product.Category,
		})
	}

	purchase, err := s.purchases.CommitCheckout(ctx, userID, items)
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout completed",
		slog.String("userID", userID),
		slog.String("purchaseID", purchase.ID),
		slog.Int("items", len(purchase.Items)),
		slog.String("total", purchase.Total.String()),
	)
	return purchase, nil
}

// History returns the user's purchases, items enriched with the current
// product records where those still exist.
func (s *CheckoutService) History(ctx context.Context, userID string) ([]PurchaseView, error) {
	purchases, err := s.purchases.ListPurchases(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/checkout: listing purchases: %w", err)
	}

	views := make([]PurchaseView, 0, len(purchases))
	for i := range purchases {
		view, err := s.enrich(ctx, &purchases[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Get returns one purchase, scoped to its owner.
func (s *CheckoutService) Get(ctx context.Context, userID, purchaseID string) (*PurchaseView, error) {
	purchase, err := s.purchases.GetPurchase(ctx, userID, purchaseID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, purchase)
}

func (s *CheckoutService) enrich(ctx context.Context, purchase *model.Purchase) (*PurchaseView, error) {
	items := make([]PurchaseItemView, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		view := PurchaseItemView{PurchaseItem: item}
		product, err := s.products.GetProductByID(ctx, item.ProductID)
		switch {
		case err == nil:
			view.Product = product
		case !errors.Is(err, apperror.ErrNotFound):
			return nil, fmt.Errorf("service/checkout: resolving product %s: %w", item.ProductID, err)
		}
		items = append(items, view)
	}
	return &PurchaseView{Purchase: *purchase, Items: items}, nil
}
