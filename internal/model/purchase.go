package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItem is a by-value snapshot of a product at checkout time.
//
// The title, price, seller and category are copied out of the product record
// rather than referenced, so editing or deleting the listing later never
// rewrites purchase history.
type PurchaseItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	SellerID  string          `json:"sellerId"`
	Category  string          `json:"category"`
}

// Subtotal returns price × quantity for this line.
func (i PurchaseItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Purchase is an immutable record of a completed checkout.
// Created exactly once per checkout; never mutated or deleted afterwards.
type Purchase struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"` // the buyer
	Items        []PurchaseItem  `json:"items"`
	Total        decimal.Decimal `json:"total"`
	PurchaseDate time.Time       `json:"purchaseDate"`
}
