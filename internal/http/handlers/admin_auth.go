package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/fin100x/server/internal/auth"
)

// AdminAuthHandler serves the admin authentication endpoints. Error bodies
// use the {"error": message} shape throughout the admin surface.
type AdminAuthHandler struct {
	svc *auth.AdminService
}

// NewAdminAuthHandler creates an AdminAuthHandler.
func NewAdminAuthHandler(svc *auth.AdminService) *AdminAuthHandler {
	return &AdminAuthHandler{svc: svc}
}

func respondAdminError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type adminLoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin serves POST /admin-auth/login.
func (h *AdminAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body adminLoginBody
	if err := decodeJSON(r, &body); err != nil || body.Email == "" || body.Password == "" {
		respondAdminError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	pair, err := h.svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondAdminError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		log.Printf("[admin-auth] login: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

type adminRefreshBody struct {
	Token string `json:"token"`
}

// HandleRefresh serves POST /admin-auth/refresh.
func (h *AdminAuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var body adminRefreshBody
	if err := decodeJSON(r, &body); err != nil || body.Token == "" {
		respondAdminError(w, http.StatusUnauthorized, "Refresh token required")
		return
	}

	pair, err := h.svc.Refresh(r.Context(), body.Token)
	if err != nil {
		if errors.Is(err, auth.ErrAdminRefreshInvalid) {
			respondAdminError(w, http.StatusForbidden, "Invalid or expired refresh token")
			return
		}
		log.Printf("[admin-auth] refresh: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

type adminLogoutBody struct {
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken"`
}

// HandleLogout serves POST /admin-auth/logout.
func (h *AdminAuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var body adminLogoutBody
	if err := decodeJSON(r, &body); err != nil || body.RefreshToken == "" || body.AccessToken == "" {
		respondAdminError(w, http.StatusBadRequest, "refreshToken and accessToken are required")
		return
	}

	if err := h.svc.Logout(r.Context(), body.RefreshToken, body.AccessToken); err != nil {
		if errors.Is(err, auth.ErrRefreshTokenNotFound) {
			respondAdminError(w, http.StatusNotFound, "Refresh token not found")
			return
		}
		log.Printf("[admin-auth] logout: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
