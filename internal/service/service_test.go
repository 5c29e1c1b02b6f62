package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/auth"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/repository/memory"
)

// testEnv wires every service onto a fresh in-memory store. Bcrypt runs at
// its minimum cost so auth tests stay fast.
type testEnv struct {
	store    *memory.Store
	auth     *AuthService
	users    *UserService
	products *ProductService
	carts    *CartService
	checkout *CheckoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New(memory.Config{})
	passwords := auth.NewPasswordServiceWithCost(4)

	return &testEnv{
		store:    store,
		auth:     NewAuthService(store, store, passwords, logger),
		users:    NewUserService(store, store, logger),
		products: NewProductService(store, store, logger),
		carts:    NewCartService(store, store, logger),
		checkout: NewCheckoutService(store, store, store, logger),
	}
}

func (e *testEnv) register(t *testing.T, email, username string) *model.User {
	t.Helper()

	res, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Username: username,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return res.User
}

func (e *testEnv) createProduct(t *testing.T, sellerID, title, price string) *model.Product {
	t.Helper()

	p, err := e.products.Create(context.Background(), sellerID, CreateProductInput{
		Title:       title,
		Description: "A perfectly serviceable test item.",
		Price:       decimal.RequireFromString(price),
		Category:    "Electronics",
	})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", title, err)
	}
	return p
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// sellOut moves the product to sold by having a throwaway buyer purchase it.
func (e *testEnv) sellOut(t *testing.T, productID string) {
	t.Helper()
	ctx := context.Background()

	buyer := e.register(t, "throwaway-"+productID+"@test.local", "throwaway")
	if _, err := e.carts.Add(ctx, buyer.ID, productID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := e.checkout.Checkout(ctx, buyer.ID); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
}
