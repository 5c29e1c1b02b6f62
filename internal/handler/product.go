package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/middleware"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/service"
)

// ProductHandler exposes catalog browsing (public) and listing management
// (auth required).
type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	ImageURL    string          `json:"imageUrl"`
}

type updateProductRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Condition   *string          `json:"condition"`
	ImageURL    *string          `json:"imageUrl"`
}

// HandleList browses the catalog with optional category, search and paging
// query parameters.
//
// HTTP: GET /api/products?category=&search=&page=&limit=
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.products.List(r.Context(), service.ListQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     intParam(q.Get("page")),
		Limit:    intParam(q.Get("limit")),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleGet returns one product with full seller contact info.
//
// HTTP: GET /api/products/{id}
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"product": view})
}

// HandleCreate stores a new listing for the caller.
//
// HTTP: POST /api/products
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.Create(r.Context(), user.ID, service.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"product": product,
	})
}

// HandleUpdate edits the caller's own listing.
//
// HTTP: PUT /api/products/{id}
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req updateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.Update(r.Context(), user.ID, chi.URLParam(r, "id"), model.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": product,
	})
}

// HandleDelete removes the caller's own listing.
//
// HTTP: DELETE /api/products/{id}
func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	product, err := h.products.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product deleted successfully",
		"product": product,
	})
}

// HandleCategories returns the fixed category list.
//
// HTTP: GET /api/products/meta/categories
func (h *ProductHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": h.products.Categories()})
}

// intParam parses a numeric query parameter; 0 when absent or malformed, and
// the service applies its defaults.
func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
