package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/repository"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MinDescriptionLength = 10
	MaxDescriptionLength = 1000
	DefaultPageSize      = 20
	MaxPageSize          = 100

	// PlaceholderImageURL is used until image upload lands.
	PlaceholderImageURL = "/uploads/placeholder.jpg"
)

// ProductService handles listing CRUD, search and browsing.
type ProductService struct {
	products repository.ProductRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewProductService(
	products repository.ProductRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products: products,
		users:    users,
		logger:   logger,
	}
}

// SellerInfo is the public slice of a seller's account attached to product
// views. Email is only filled on the single-product view (so buyers can get
// in touch), never on list pages.
type SellerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// ProductView is a product plus its seller's public info.
type ProductView struct {
	model.Product
	Seller *SellerInfo `json:"seller"`
}

// Pagination describes one page of a larger result set.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ProductPage is the browse response: one page of products, the paging
// envelope, and the category list the UI renders as filters.
type ProductPage struct {
	Products   []ProductView `json:"products"`
	Pagination Pagination    `json:"pagination"`
	Categories []string      `json:"categories"`
}

// ListQuery are the optional browse parameters.
type ListQuery struct {
	Category string // exact category, "" or "all" for everything
	Search   string // keyword; when set, takes precedence over Category
	Page     int    // 1-based
	Limit    int
}

// CreateProductInput is the data needed to create a listing.
type CreateProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Condition   string
	ImageURL    string
}

// Create validates and stores a new listing for the seller.
func (s *ProductService) Create(ctx context.Context, sellerID string, in CreateProductInput) (*model.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if !in.Price.IsPositive() {
		return nil, apperror.ValidationFailed("price", "Price must be a positive number")
	}
	if !model.ValidCategory(in.Category) {
		return nil, apperror.ValidationFailed("category", "Invalid category selected")
	}
	if in.Condition == "" {
		in.Condition = model.DefaultCondition
	} else if !model.ValidCondition(in.Condition) {
		return nil, apperror.ValidationFailed("condition", "Invalid condition")
	}
	if in.ImageURL == "" {
		in.ImageURL = PlaceholderImageURL
	}

	product := &model.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		SellerID:    sellerID,
		ImageURL:    in.ImageURL,
		Status:      model.StatusAvailable,
	}
	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("service/product: creating product: %w", err)
	}

	s.logger.Info("product created",
		slog.String("productID", product.ID),
		slog.String("sellerID", sellerID),
		slog.String("title", product.Title),
	)
	return product, nil
}

// List browses the catalog. Category narrows the set; a search keyword
// replaces it entirely (search spans the whole catalog, not the filtered
// subset — longstanding behaviour the frontend expects). Pagination happens
// after filtering.
func (s *ProductService) List(ctx context.Context, q ListQuery) (*ProductPage, error) {
	var products []model.Product
	var err error

	switch {
	case q.Search != "":
		products, err = s.products.SearchProducts(ctx, q.Search)
	case q.Category != "" && q.Category != "all":
		products, err = s.products.FilterProductsByCategory(ctx, q.Category)
	default:
		products, err = s.products.ListProducts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("service/product: listing products: %w", err)
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, ProductView{
			Product: products[i],
			Seller:  s.sellerInfo(ctx, products[i].SellerID, false),
		})
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	total := len(views)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ProductPage{
		Products: views[start:end],
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
		Categories: model.Categories,
	}, nil
}

// Get returns a single product with full seller contact info.
func (s *ProductService) Get(ctx context.Context, id string) (*ProductView, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductView{
		Product: *product,
		Seller:  s.sellerInfo(ctx, product.SellerID, true),
	}, nil
}

// Update edits a listing. Owner-only: anyone else gets Forbidden. Provided
// fields are validated; nil fields are left alone.
func (s *ProductService) Update(ctx context.Context, userID, id string, upd model.ProductUpdate) (*model.Product, error) {
	existing, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.SellerID != userID {
		return nil, apperror.Forbidden("You can only edit your own products")
	}

	if upd.Title != nil {
		trimmed := strings.TrimSpace(*upd.Title)
		if err := validateTitle(trimmed); err != nil {
			return nil, err
		}
		upd.Title = &trimmed
	}
	if upd.Description != nil {
		trimmed := strings.TrimSpace(*upd.Description)
		if err := validateDescription(trimmed); err != nil {
			return nil, err
		}
		upd.Description = &trimmed
	}
	if upd.Price != nil && !upd.Price.IsPositive() {
		return nil, apperror.ValidationFailed("price", "Price must be a positive number")
	}
	if upd.Category != nil && !model.ValidCategory(*upd.Category) {
		return nil, apperror.ValidationFailed("category", "Invalid category selected")
	}
	if upd.Condition != nil && !model.ValidCondition(*upd.Condition) {
		return nil, apperror.ValidationFailed("condition", "Invalid condition")
	}

	updated, err := s.products.UpdateProduct(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated", slog.String("productID", id))
	return updated, nil
}

// Delete hard-removes a listing. Owner-only.
func (s *ProductService) Delete(ctx context.Context, userID, id string) (*model.Product, error) {
	existing, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.SellerID != userID {
		return nil, apperror.Forbidden("You can only delete your own products")
	}

	removed, err := s.products.DeleteProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product deleted", slog.String("productID", id))
	return removed, nil
}

// Categories returns the fixed category list.
func (s *ProductService) Categories() []string {
	return model.Categories
}

// sellerInfo looks up the seller's public info; nil when the account is
// gone. A missing seller never fails a product view.
func (s *ProductService) sellerInfo(ctx context.Context, sellerID string, includeEmail bool) *SellerInfo {
	seller, err := s.users.GetUserByID(ctx, sellerID)
	if err != nil {
		return nil
	}
	info := &SellerInfo{ID: seller.ID, Username: seller.Username}
	if includeEmail {
		info.Email = seller.Email
	}
	return info
}

func validateTitle(title string) error {
	if len(title) < MinTitleLength || len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("Title must be between %d-%d characters", MinTitleLength, MaxTitleLength))
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) < MinDescriptionLength || len(description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("Description must be between %d-%d characters", MinDescriptionLength, MaxDescriptionLength))
	}
	return nil
}
