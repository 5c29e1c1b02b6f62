package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// GetCart returns the user's cart lines, oldest first. No rows is just an
// empty cart — carts are created lazily by the first AddToCart.
func (db *DB) GetCart(ctx context.Context, userID string) ([]model.CartItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, product_id, quantity, added_at
		 FROM cart_items
		 WHERE user_id = ?
		 ORDER BY added_at, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning cart row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cart: %w", err)
	}
	return items, nil
}

// AddToCart adds one unit. The UNIQUE(user_id, product_id) constraint means
// a cart can never grow a duplicate line: an UPDATE that touches zero rows
// tells us the line doesn't exist yet, so we INSERT it.
func (db *DB) AddToCart(ctx context.Context, userID, productID string) ([]model.CartItem, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE cart_items SET quantity = quantity + 1
		 WHERE user_id = ? AND product_id = ?`,
		userID, productID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: incrementing cart line: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if rowsAffected == 0 {
		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO cart_items (id, user_id, product_id, quantity, added_at)
			 VALUES (?, ?, ?, 1, ?)`,
			xid.New().String(), userID, productID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("sqlite: inserting cart line: %w", err)
		}
	}

	return db.GetCart(ctx, userID)
}

// RemoveFromCart drops the line for productID (if any) and returns the
// updated cart.
func (db *DB) RemoveFromCart(ctx context.Context, userID, productID string) ([]model.CartItem, error) {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`,
		userID, productID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: removing cart line: %w", err)
	}
	return db.GetCart(ctx, userID)
}

// SetCartQuantity replaces the line's quantity in place.
func (db *DB) SetCartQuantity(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ?
		 WHERE user_id = ? AND product_id = ?`,
		quantity, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating cart quantity: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFoundMsg("Item not found in cart")
	}

	var item model.CartItem
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, product_id, quantity, added_at
		 FROM cart_items WHERE user_id = ? AND product_id = ?`,
		userID, productID,
	).Scan(&item.ID, &item.ProductID, &item.Quantity, &item.AddedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("Item not found in cart")
		}
		return nil, fmt.Errorf("sqlite: reading cart line: %w", err)
	}
	return &item, nil
}

// ClearCart resets the user's cart to empty.
func (db *DB) ClearCart(ctx context.Context, userID string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: clearing cart: %w", err)
	}
	return nil
}
