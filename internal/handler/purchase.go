package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarim/marketplace/internal/middleware"
	"github.com/mkarim/marketplace/internal/service"
)

// PurchaseHandler exposes checkout and purchase history. All endpoints
// require auth.
type PurchaseHandler struct {
	checkout *service.CheckoutService
}

func NewPurchaseHandler(checkout *service.CheckoutService) *PurchaseHandler {
	return &PurchaseHandler{checkout: checkout}
}

// HandleList returns the caller's purchase history, newest data included
// where products still exist.
//
// HTTP: GET /api/purchases
func (h *PurchaseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	purchases, err := h.checkout.History(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"purchases": purchases})
}

// HandleCheckout converts the caller's cart into a purchase.
//
// HTTP: POST /api/purchases/checkout
func (h *PurchaseHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	purchase, err := h.checkout.Checkout(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Purchase completed successfully",
		"purchase": purchase,
	})
}

// HandleGet returns one of the caller's purchases.
//
// HTTP: GET /api/purchases/{id}
func (h *PurchaseHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	purchase, err := h.checkout.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"purchase": purchase})
}
