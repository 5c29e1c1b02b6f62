package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarim/marketplace/internal/middleware"
	"github.com/mkarim/marketplace/internal/service"
)

// CartHandler exposes the cart endpoints. All of them require auth.
type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleGet returns the enriched cart with totals.
//
// HTTP: GET /api/cart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	view, err := h.carts.View(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleAdd puts one unit of the product in the cart.
//
// HTTP: POST /api/cart/add/{productId}
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	cart, err := h.carts.Add(r.Context(), user.ID, chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item added to cart successfully",
		"cart":    cart,
	})
}

// HandleRemove drops the product's line from the cart.
//
// HTTP: DELETE /api/cart/remove/{productId}
func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	cart, err := h.carts.Remove(r.Context(), user.ID, chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item removed from cart successfully",
		"cart":    cart,
	})
}

// HandleUpdateQuantity replaces a line's quantity and echoes the whole cart
// back.
//
// HTTP: PUT /api/cart/update/{productId}
func (h *CartHandler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req updateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.carts.SetQuantity(r.Context(), user.ID, chi.URLParam(r, "productId"), req.Quantity); err != nil {
		writeError(w, err)
		return
	}

	cart, err := h.carts.Items(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cart updated successfully",
		"cart":    cart,
	})
}

// HandleClear empties the cart.
//
// HTTP: DELETE /api/cart/clear
func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.carts.Clear(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared successfully"})
}
