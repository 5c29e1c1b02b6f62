package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// ListPurchases returns the user's purchase history, oldest first, with
// items attached.
func (db *DB) ListPurchases(ctx context.Context, userID string) ([]model.Purchase, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, total, purchase_date
		 FROM purchases
		 WHERE user_id = ?
		 ORDER BY purchase_date, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying purchases: %w", err)
	}
	defer rows.Close()

	purchases := []model.Purchase{}
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.Total, &p.PurchaseDate); err != nil {
			return nil, fmt.Errorf("sqlite: scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating purchases: %w", err)
	}

	for i := range purchases {
		items, err := db.purchaseItems(ctx, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Items = items
	}
	return purchases, nil
}

// GetPurchase returns one of the user's purchases. The user_id predicate
// makes the lookup owner-scoped: someone else's purchase id is NotFound.
func (db *DB) GetPurchase(ctx context.Context, userID, purchaseID string) (*model.Purchase, error) {
	var p model.Purchase
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, total, purchase_date
		 FROM purchases
		 WHERE id = ? AND user_id = ?`,
		purchaseID, userID,
	).Scan(&p.ID, &p.UserID, &p.Total, &p.PurchaseDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("purchase", purchaseID)
		}
		return nil, fmt.Errorf("sqlite: getting purchase %s: %w", purchaseID, err)
	}

	items, err := db.purchaseItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (db *DB) purchaseItems(ctx context.Context, purchaseID string) ([]model.PurchaseItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT product_id, title, price, quantity, seller_id, category
		 FROM purchase_items
		 WHERE purchase_id = ?
		 ORDER BY position`,
		purchaseID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying purchase items: %w", err)
	}
	defer rows.Close()

	items := []model.PurchaseItem{}
	for rows.Next() {
		var item model.PurchaseItem
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Price,
			&item.Quantity, &item.SellerID, &item.Category); err != nil {
			return nil, fmt.Errorf("sqlite: scanning purchase item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating purchase items: %w", err)
	}
	return items, nil
}

// CommitCheckout runs the whole checkout in one transaction:
//
//   - every product is re-read FOR the commit and must still be available
//     and not the buyer's own — the guarded UPDATE (status = 'available' in
//     the WHERE clause) is the compare-and-swap that defeats a concurrent
//     double-sell;
//   - the purchase and its item snapshots are inserted;
//   - the buyer's cart is emptied.
//
// Any failure rolls the transaction back, so a rejected checkout leaves
// product statuses and the cart byte-for-byte as they were.
func (db *DB) CommitCheckout(ctx context.Context, userID string, items []model.PurchaseItem) (*model.Purchase, error) {
	if len(items) == 0 {
		return nil, apperror.ValidationFailed("cart", "Cart is empty")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning checkout tx: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	now := time.Now()
	for _, item := range items {
		var title string
		var status model.ProductStatus
		var sellerID string
		err := tx.QueryRowContext(ctx,
			`SELECT title, status, seller_id FROM products WHERE id = ?`,
			item.ProductID,
		).Scan(&title, &status, &sellerID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, apperror.Conflict(
					fmt.Sprintf("Product %s is no longer available", item.ProductID))
			}
			return nil, fmt.Errorf("sqlite: checking product %s: %w", item.ProductID, err)
		}
		if status != model.StatusAvailable {
			return nil, apperror.Conflict(
				fmt.Sprintf("Product %q is no longer available", title))
		}
		if sellerID == userID {
			return nil, apperror.Conflict(
				fmt.Sprintf("You cannot purchase your own product: %q", title))
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE products SET status = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			model.StatusSold, now, item.ProductID, model.StatusAvailable)
		if err != nil {
			return nil, fmt.Errorf("sqlite: marking product sold: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			// Present but not available (or sold a moment ago).
			return nil, apperror.Conflict(
				fmt.Sprintf("Product %q is no longer available", title))
		}
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	purchase := &model.Purchase{
		ID:           xid.New().String(),
		UserID:       userID,
		Items:        append([]model.PurchaseItem(nil), items...),
		Total:        total,
		PurchaseDate: now,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchases (id, user_id, total, purchase_date)
		 VALUES (?, ?, ?, ?)`,
		purchase.ID, purchase.UserID, purchase.Total, purchase.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting purchase: %w", err)
	}

	for i, item := range purchase.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO purchase_items (purchase_id, position, product_id, title, price, quantity, seller_id, category)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			purchase.ID, i, item.ProductID, item.Title, item.Price,
			item.Quantity, item.SellerID, item.Category)
		if err != nil {
			return nil, fmt.Errorf("sqlite: inserting purchase item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("sqlite: clearing cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing checkout: %w", err)
	}
	return purchase, nil
}
