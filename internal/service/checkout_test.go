package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

func TestCheckout_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seller := env.register(t, "seller@example.com", "seller")
	buyer := env.register(t, "buyer@example.com", "buyer")
	a := env.createProduct(t, seller.ID, "Desk Fan", "10.00")
	b := env.createProduct(t, seller.ID, "Extension Cord", "7.50")

	// One fan, two cords.
	for _, id := range []string{a.ID, b.ID, b.ID} {
		if _, err := env.carts.Add(ctx, buyer.ID, id); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	purchase, err := env.checkout.Checkout(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	if want := "25"; !purchase.Total.Equal(decimalFromString(t, want)) {
		t.Errorf("Total = %s, want %s", purchase.Total, want)
	}
	if len(purchase.Items) != 2 {
		t.Errorf("purchase has %d items, want 2", len(purchase.Items))
	}

	// Everything bought is now sold.
	for _, id := range []string{a.ID, b.ID} {
		p, err := env.store.GetProductByID(ctx, id)
		if err != nil {
			t.Fatalf("GetProductByID() error = %v", err)
		}
		if p.Status != model.StatusSold {
			t.Errorf("product %s status = %q, want sold", id, p.Status)
		}
	}

	// And the cart is empty.
	view, err := env.carts.View(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if len(view.CartItems) != 0 {
		t.Errorf("cart after checkout has %d lines, want 0", len(view.CartItems))
	}
}

func TestCheckout_ItemSnapshotCopiesProductFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seller := env.register(t, "seller@example.com", "seller")
	buyer := env.register(t, "buyer@example.com", "buyer")
	p := env.createProduct(t, seller.ID, "Noise-Cancelling Headphones", "85.00")

	if _, err := env.carts.Add(ctx, buyer.ID, p.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	purchase, err := env.checkout.Checkout(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if len(purchase.Items) != 1 {
		t.Fatalf("purchase has %d items, want 1", len(purchase.Items))
	}

	// Every snapshot field is copied from the product at checkout time.
	item := purchase.Items[0]
	if item.ProductID != p.ID {
		t.Errorf("ProductID = %q, want %q", item.ProductID, p.ID)
	}
	if item.Title != "Noise-Cancelling Headphones" {
		t.Errorf("Title = %q, want %q", item.Title, "Noise-Cancelling Headphones")
	}
	if !item.Price.Equal(decimal.RequireFromString("85.00")) {
		t.Errorf("Price = %s, want 85.00", item.Price)
	}
	if item.Quantity != 1 {
		t.Errorf("Quantity = %d, want 1", item.Quantity)
	}
	if item.SellerID != seller.ID {
		t.Errorf("SellerID = %q, want %q", item.SellerID, seller.ID)
	}
	if item.Category != "Electronics" {
		t.Errorf("Category = %q, want %q", item.Category, "Electronics")
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	buyer := env.register(t, "buyer@example.com", "buyer")

	_, err := env.checkout.Checkout(ctx, buyer.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Checkout() error = %v, want ErrValidation", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "Cart is empty" {
		t.Errorf("message = %q, want %q", appErr.Message, "Cart is empty")
	}
}

func TestCheckout_UnavailableItemRejectsWholeCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seller := env.register(t, "seller@example.com", "seller")
	buyer := env.register(t, "buyer@example.com", "buyer")
	fine := env.createProduct(t, seller.ID, "Camping Stove", "30.00")
	contested := env.createProduct(t, seller.ID, "Camping Tent", "55.00")

	for _, id := range []string{fine.ID, contested.ID} {
		if _, err := env.carts.Add(ctx, buyer.ID, id); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	// Someone else buys the tent first.
	env.sellOut(t, contested.ID)

	_, err := env.checkout.Checkout(ctx, buyer.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Checkout() error = %v, want ErrConflict", err)
	}
	if !strings.Contains(err.Error(), "Camping Tent") {
		t.Errorf("error %q does not name the unavailable product", err)
	}

	// All or nothing: the stove is still available, the cart untouched, no
	// purchase recorded.
	p, err := env.store.GetProductByID(ctx, fine.ID)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if p.Status != model.StatusAvailable {
		t.Errorf("stove status = %q, want still available", p.Status)
	}
	stored, err := env.store.GetCart(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("GetCart() error = %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("cart has %d lines after failed checkout, want 2", len(stored))
	}
	history, err := env.checkout.History(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history has %d purchases after failed checkout, want 0", len(history))
	}
}

func TestCheckout_OwnProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seller := env.register(t, "seller@example.com", "seller")
	p := env.createProduct(t, seller.ID, "Bookshelf", "40.00")

	// The cart service blocks adding your own product, so plant the line
	// directly in the store to exercise checkout's own check.
	if _, err := env.store.AddToCart(ctx, seller.ID, p.ID); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}

	_, err := env.checkout.Checkout(ctx, seller.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Checkout() error = %v, want ErrConflict", err)
	}
	if !strings.Contains(err.Error(), "Bookshelf") {
		t.Errorf("error %q does not name the product", err)
	}
}

func TestPurchaseHistory_SnapshotsSurviveProductChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seller := env.register(t, "seller@example.com", "seller")
	buyer := env.register(t, "buyer@example.com", "buyer")
	p := env.createProduct(t, seller.ID, "Film Camera", "120.00")

	if _, err := env.carts.Add(ctx, buyer.ID, p.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	purchase, err := env.checkout.Checkout(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	// Seller deletes the sold listing afterwards.
	if _, err := env.products.Delete(ctx, seller.ID, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	view, err := env.checkout.Get(ctx, buyer.ID, purchase.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("purchase has %d items, want 1", len(view.Items))
	}
	item := view.Items[0]
	if item.Title != "Film Camera" {
		t.Errorf("snapshot title = %q, want %q", item.Title, "Film Camera")
	}
	if !item.Price.Equal(decimal.RequireFromString("120.00")) {
		t.Errorf("snapshot price = %s, want 120.00", item.Price)
	}
	if item.Product != nil {
		t.Errorf("deleted product should not be attached, got %+v", item.Product)
	}
}

func TestPurchaseGet_OwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seller := env.register(t, "seller@example.com", "seller")
	buyer := env.register(t, "buyer@example.com", "buyer")
	snoop := env.register(t, "snoop@example.com", "snoop")
	p := env.createProduct(t, seller.ID, "Telescope", "200.00")

	if _, err := env.carts.Add(ctx, buyer.ID, p.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	purchase, err := env.checkout.Checkout(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	if _, err := env.checkout.Get(ctx, snoop.ID, purchase.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() by non-owner error = %v, want ErrNotFound", err)
	}
	if _, err := env.checkout.Get(ctx, buyer.ID, purchase.ID); err != nil {
		t.Errorf("Get() by owner error = %v", err)
	}
}
