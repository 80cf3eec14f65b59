package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/middleware"
	"github.com/fin100x/server/internal/model"
)

// AuthHandler serves the user authentication endpoints.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type otpRequestBody struct {
	Phone    string       `json:"phone"`
	Channel  string       `json:"channel"`
	Locale   string       `json:"locale"`
	Consent  auth.Consent `json:"consent"`
	DeviceID *string      `json:"deviceId"`
}

// HandleRequestOTP serves POST /auth/otp/request.
func (h *AuthHandler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var body otpRequestBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed request body")
		return
	}

	ticket, err := h.svc.RequestOTP(r.Context(), body.Phone, body.Consent, body.Channel, body.Locale, body.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPhone):
			respondError(w, http.StatusBadRequest, "INVALID_PHONE", "Phone number must be a valid Indian mobile number")
		case errors.Is(err, auth.ErrConsentMissing):
			respondError(w, http.StatusBadRequest, "CONSENT_MISSING", "Terms and privacy consent are required")
		case errors.Is(err, auth.ErrSMSFailed):
			respondError(w, http.StatusInternalServerError, "SMS_FAILED", "Could not deliver OTP, please try again")
		default:
			log.Printf("[auth] request otp: %v", err)
			respondServerError(w)
		}
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

type otpVerifyBody struct {
	Phone     string  `json:"phone"`
	OTP       string  `json:"otp"`
	RequestID string  `json:"requestId"`
	DeviceID  *string `json:"deviceId"`
}

type otpVerifyResponse struct {
	User   model.User     `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// HandleVerifyOTP serves POST /auth/otp/verify.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body otpVerifyBody
	if err := decodeJSON(r, &body); err != nil || body.Phone == "" || body.OTP == "" || body.RequestID == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "phone, otp and requestId are required")
		return
	}

	user, pair, err := h.svc.VerifyOTP(r.Context(), body.RequestID, body.Phone, body.OTP, body.DeviceID)
	if err != nil {
		if errors.Is(err, auth.ErrOTPInvalid) {
			respondError(w, http.StatusUnauthorized, "OTP_INVALID", "OTP is incorrect or expired")
			return
		}
		log.Printf("[auth] verify otp: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, otpVerifyResponse{User: user, Tokens: pair})
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

// HandleRefresh serves POST /auth/token/refresh.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var body refreshBody
	if err := decodeJSON(r, &body); err != nil || body.RefreshToken == "" {
		respondError(w, http.StatusUnauthorized, "INVALID_REFRESH", "Refresh token is invalid or expired")
		return
	}

	pair, err := h.svc.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefresh) {
			respondError(w, http.StatusUnauthorized, "INVALID_REFRESH", "Refresh token is invalid or expired")
			return
		}
		log.Printf("[auth] refresh: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

// HandleLogout serves POST /auth/logout. Requires the user guard.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "No authenticated session")
		return
	}
	if err := h.svc.Logout(r.Context(), principal.UserID); err != nil {
		log.Printf("[auth] logout: %v", err)
		respondServerError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
