package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the lifecycle state of a listing.
//
// Transitions are one-directional in the normal flow: a listing starts as
// available and becomes sold at checkout. "removed" exists for listings the
// seller withdraws without deleting.
type ProductStatus string

const (
	StatusAvailable ProductStatus = "available"
	StatusSold      ProductStatus = "sold"
	StatusRemoved   ProductStatus = "removed"
)

// Categories is the fixed set of product categories.
var Categories = []string{
	"Electronics",
	"Clothing & Accessories",
	"Home & Garden",
	"Books & Media",
	"Sports & Outdoors",
	"Toys & Games",
	"Automotive",
	"Health & Beauty",
	"Other",
}

// Conditions is the fixed set of product conditions.
var Conditions = []string{"New", "Like New", "Good", "Fair", "Poor"}

// DefaultCondition is applied when a seller doesn't specify one.
const DefaultCondition = "Good"

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// ValidCondition reports whether c is one of the fixed conditions.
func ValidCondition(c string) bool {
	for _, cond := range Conditions {
		if cond == c {
			return true
		}
	}
	return false
}

// Product represents a second-hand listing.
//
// WHY decimal.Decimal FOR Price?
// Prices are money. float64 accumulates representation error when summing
// cart subtotals (0.1 + 0.2 != 0.3); decimal keeps totals exact.
//
// SellerID never changes after creation — a listing cannot be transferred.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	SellerID    string          `json:"sellerId"`
	ImageURL    string          `json:"imageUrl"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductUpdate is a partial update of a listing. Nil fields keep the stored
// value (see UserUpdate for the rationale). Status is not updatable here —
// it only changes through checkout.
type ProductUpdate struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Condition   *string
	ImageURL    *string
}
