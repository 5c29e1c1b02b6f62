package handler

import (
	"net/http"
	"strings"

	"github.com/mkarim/marketplace/internal/middleware"
	"github.com/mkarim/marketplace/internal/service"
)

// AuthHandler exposes registration, login, logout and the current-user
// endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account and returns it with a session token.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

// HandleLogin verifies credentials and issues a fresh session token.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// HandleLogout invalidates the presented session token server-side. A token
// that is already gone still logs out cleanly.
//
// HTTP: POST /api/auth/logout (auth required)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if scheme, rest, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		token = strings.TrimSpace(rest)
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleMe returns the authenticated user's record.
//
// HTTP: GET /api/auth/me (auth required)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		// Unreachable on a RequireAuth route; guard anyway.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "Access token required",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
