package handler

import (
	"net/http"

	"github.com/mkarim/marketplace/internal/middleware"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/service"
)

// UserHandler exposes the profile and my-listings endpoints. Everything here
// sits behind RequireAuth.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// updateProfileRequest uses pointers so absent fields stay absent: "field not
// in the JSON" and "field set to empty string" must behave differently.
type updateProfileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// HandleProfile returns the caller's account.
//
// HTTP: GET /api/users/profile
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	profile, err := h.users.Profile(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

// HandleUpdateProfile merges the provided fields into the caller's account.
//
// HTTP: PUT /api/users/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, model.UserUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

// HandleListings returns the products the caller is selling.
//
// HTTP: GET /api/users/listings
func (h *UserHandler) HandleListings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	products, err := h.users.Listings(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}
