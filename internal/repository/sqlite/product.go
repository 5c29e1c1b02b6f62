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

const productColumns = `id, title, description, price, category, condition,
	seller_id, image_url, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.Condition,
		&p.SellerID, &p.ImageURL, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct inserts a new listing. Status defaults to available when the
// caller left it empty.
func (db *DB) CreateProduct(ctx context.Context, product *model.Product) error {
	product.ID = xid.New().String()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = model.StatusAvailable
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.Category,
		product.Condition,
		product.SellerID,
		product.ImageURL,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating product: %w", err)
	}
	return nil
}

func (db *DB) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("sqlite: getting product %s: %w", id, err)
	}
	return p, nil
}

func (db *DB) ListProducts(ctx context.Context) ([]model.Product, error) {
	return db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at`)
}

func (db *DB) ListProductsBySeller(ctx context.Context, sellerID string) ([]model.Product, error) {
	return db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE seller_id = ? ORDER BY created_at`,
		sellerID)
}

// SearchProducts matches the query as a case-insensitive substring of title
// OR description. instr() instead of LIKE so that % and _ in the query are
// treated literally.
func (db *DB) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE instr(lower(title), lower(?)) > 0
		    OR instr(lower(description), lower(?)) > 0
		 ORDER BY created_at`,
		query, query)
}

func (db *DB) FilterProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = ? ORDER BY created_at`,
		category)
}

func (db *DB) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating products: %w", err)
	}
	return products, nil
}

// UpdateProduct merges the non-nil fields (fetch-then-update, see
// UpdateUser) and bumps updated_at. SellerID and Status are untouchable
// here.
func (db *DB) UpdateProduct(ctx context.Context, id string, upd model.ProductUpdate) (*model.Product, error) {
	p, err := db.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

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

	_, err = db.conn.ExecContext(ctx,
		`UPDATE products
		 SET title = ?, description = ?, price = ?, category = ?, condition = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.Price, p.Category, p.Condition, p.ImageURL, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating product %s: %w", id, err)
	}
	return p, nil
}

// DeleteProduct hard-removes the listing and returns the removed record.
func (db *DB) DeleteProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := db.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := db.conn.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: deleting product %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("product", id)
	}
	return p, nil
}
