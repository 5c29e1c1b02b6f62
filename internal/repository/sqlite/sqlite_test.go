package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// Each test gets its own ":memory:" database — fast, isolated, destroyed on
// close.
func newTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db, err := New(":memory:", opts...)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "hashed", Username: "tester"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, db *DB, title, sellerID, price string) *model.Product {
	t.Helper()
	product := &model.Product{
		Title:       title,
		Description: "a perfectly serviceable " + title,
		Price:       decimal.RequireFromString(price),
		Category:    "Electronics",
		Condition:   "Good",
		SellerID:    sellerID,
	}
	if err := db.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

func itemFor(p *model.Product, qty int) model.PurchaseItem {
	return model.PurchaseItem{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Quantity:  qty,
		SellerID:  p.SellerID,
		Category:  p.Category,
	}
}

func TestUserRoundTrip(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:     "round@example.com",
		Password:  "secret-hash",
		Username:  "roundtrip",
		FirstName: "Ada",
		Phone:     "0123456789",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == "" || user.CreatedAt.IsZero() {
		t.Fatal("CreateUser() did not set id/timestamp")
	}

	got, err := db.GetUserByEmail(context.Background(), "round@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != user.ID || got.Password != "secret-hash" || got.FirstName != "Ada" {
		t.Errorf("got %+v", got)
	}
}

func TestCreateUser_DuplicateEmailConstraint(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com")

	err := db.CreateUser(context.Background(), &model.User{
		Email: "dup@example.com", Password: "x", Username: "y",
	})
	if err == nil {
		t.Fatal("expected UNIQUE constraint violation, got nil")
	}
}

func TestUpdateUser_PartialMerge(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "merge@example.com")

	address := "5 Long Street, Somewhere"
	updated, err := db.UpdateUser(context.Background(), user.ID,
		model.UserUpdate{Address: &address})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Address != address {
		t.Errorf("Address = %q", updated.Address)
	}
	if updated.Email != "merge@example.com" || updated.Username != "tester" {
		t.Error("untouched fields changed")
	}
}

func TestProductSearchAndFilter(t *testing.T) {
	db := newTestDB(t)
	createTestProduct(t, db, "Vintage Lamp", "seller-1", "10.00")
	createTestProduct(t, db, "Desk Chair", "seller-1", "25.00")

	got, err := db.SearchProducts(context.Background(), "LAMP")
	if err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Vintage Lamp" {
		t.Errorf("search results = %v", got)
	}

	// A % in the query is literal, not a wildcard.
	got, err = db.SearchProducts(context.Background(), "%")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("wildcard leaked into search: %v", got)
	}

	got, err = db.FilterProductsByCategory(context.Background(), "Electronics")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("category results = %d, want 2", len(got))
	}
}

func TestProductUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	p := createTestProduct(t, db, "Lamp", "seller-1", "10.00")

	title := "Brass Lamp"
	newPrice := decimal.RequireFromString("12.50")
	updated, err := db.UpdateProduct(context.Background(), p.ID,
		model.ProductUpdate{Title: &title, Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateProduct() error = %v", err)
	}
	if updated.Title != "Brass Lamp" || !updated.Price.Equal(newPrice) {
		t.Errorf("updated = %+v", updated)
	}
	if updated.SellerID != "seller-1" || updated.Status != model.StatusAvailable {
		t.Error("seller or status changed by update")
	}

	removed, err := db.DeleteProduct(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("DeleteProduct() error = %v", err)
	}
	if removed.Title != "Brass Lamp" {
		t.Errorf("removed.Title = %q", removed.Title)
	}
	if _, err := db.GetProductByID(context.Background(), p.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCartMergeAndQuantity(t *testing.T) {
	db := newTestDB(t)
	p := createTestProduct(t, db, "Lamp", "seller-1", "10.00")

	db.AddToCart(context.Background(), "buyer-1", p.ID)
	cart, err := db.AddToCart(context.Background(), "buyer-1", p.ID)
	if err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if len(cart) != 1 || cart[0].Quantity != 2 {
		t.Fatalf("cart = %+v, want one line with quantity 2", cart)
	}

	item, err := db.SetCartQuantity(context.Background(), "buyer-1", p.ID, 7)
	if err != nil {
		t.Fatalf("SetCartQuantity() error = %v", err)
	}
	if item.Quantity != 7 {
		t.Errorf("Quantity = %d, want 7", item.Quantity)
	}

	if _, err := db.SetCartQuantity(context.Background(), "buyer-1", "ghost", 2); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitCheckout_TransactionAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	a := createTestProduct(t, db, "Lamp", "seller-1", "10.00")
	b := createTestProduct(t, db, "Chair", "seller-2", "5.00")
	db.AddToCart(context.Background(), "buyer-1", a.ID)
	db.AddToCart(context.Background(), "buyer-1", b.ID)

	// The chair is sold to someone else first.
	if _, err := db.CommitCheckout(context.Background(), "buyer-2",
		[]model.PurchaseItem{itemFor(b, 1)}); err != nil {
		t.Fatal(err)
	}

	_, err := db.CommitCheckout(context.Background(), "buyer-1",
		[]model.PurchaseItem{itemFor(a, 1), itemFor(b, 1)})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Rollback: the lamp is still available, even though its guarded UPDATE
	// ran before the chair's failed.
	got, _ := db.GetProductByID(context.Background(), a.ID)
	if got.Status != model.StatusAvailable {
		t.Errorf("lamp status = %q after rollback, want available", got.Status)
	}
	cart, _ := db.GetCart(context.Background(), "buyer-1")
	if len(cart) != 2 {
		t.Errorf("cart lines = %d after rollback, want 2", len(cart))
	}
	history, _ := db.ListPurchases(context.Background(), "buyer-1")
	if len(history) != 0 {
		t.Error("purchase recorded despite rollback")
	}
}

func TestCommitCheckout_SuccessAndSnapshot(t *testing.T) {
	db := newTestDB(t)
	a := createTestProduct(t, db, "Lamp", "seller-1", "10.00")
	b := createTestProduct(t, db, "Chair", "seller-2", "5.00")
	db.AddToCart(context.Background(), "buyer-1", a.ID)
	db.AddToCart(context.Background(), "buyer-1", b.ID)

	purchase, err := db.CommitCheckout(context.Background(), "buyer-1",
		[]model.PurchaseItem{itemFor(a, 2), itemFor(b, 1)})
	if err != nil {
		t.Fatalf("CommitCheckout() error = %v", err)
	}
	if want := decimal.RequireFromString("25.00"); !purchase.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", purchase.Total, want)
	}

	cart, _ := db.GetCart(context.Background(), "buyer-1")
	if len(cart) != 0 {
		t.Errorf("cart not cleared: %v", cart)
	}

	// Reprice and delete the lamp — the snapshot must not move.
	newPrice := decimal.RequireFromString("999.99")
	if _, err := db.UpdateProduct(context.Background(), a.ID, model.ProductUpdate{Price: &newPrice}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.DeleteProduct(context.Background(), a.ID); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetPurchase(context.Background(), "buyer-1", purchase.ID)
	if err != nil {
		t.Fatalf("GetPurchase() error = %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Title != "Lamp" || !got.Items[0].Price.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("snapshot item = %+v", got.Items[0])
	}

	// Owner-scoped lookup.
	if _, err := db.GetPurchase(context.Background(), "buyer-2", purchase.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	db := newTestDB(t)

	token, err := db.CreateSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	userID, err := db.ResolveSession(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveSession() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q", userID)
	}

	removed, err := db.DeleteSession(context.Background(), token)
	if err != nil || !removed {
		t.Fatalf("DeleteSession() = %v, %v", removed, err)
	}
	removed, err = db.DeleteSession(context.Background(), token)
	if err != nil || removed {
		t.Fatalf("second DeleteSession() = %v, %v; want false, nil", removed, err)
	}
}

func TestSessionTTL(t *testing.T) {
	db := newTestDB(t, WithSessionTTL(time.Millisecond))

	token, err := db.CreateSession(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := db.ResolveSession(context.Background(), token); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected expired session to be ErrNotFound, got %v", err)
	}
}
