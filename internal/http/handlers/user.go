package handlers

import (
	"log"
	"net/http"

	"github.com/fin100x/server/internal/chat"
	"github.com/fin100x/server/internal/middleware"
	"github.com/fin100x/server/internal/repo"
)

// UserHandler serves the authenticated user's profile and chat endpoints.
type UserHandler struct {
	users repo.UserRepo
	chat  *chat.Client
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users repo.UserRepo, chatClient *chat.Client) *UserHandler {
	return &UserHandler{users: users, chat: chatClient}
}

// HandleMe serves GET /user/me.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	user, err := h.users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		log.Printf("[user] load profile: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type profilePatchBody struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Language  *string `json:"language"`
}

// HandleUpdateProfile serves PATCH /user/profile.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body profilePatchBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed request body")
		return
	}

	principal, _ := middleware.GetPrincipal(r.Context())
	user, err := h.users.UpdateProfile(r.Context(), principal.UserID, repo.ProfileUpdate{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Language:  body.Language,
	})
	if err != nil {
		log.Printf("[user] update profile: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type chatBody struct {
	Query string `json:"query"`
}

// HandleChat serves POST /user/chat. The backend's status and body are
// relayed unchanged.
func (h *UserHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var body chatBody
	if err := decodeJSON(r, &body); err != nil || body.Query == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "query is required")
		return
	}

	principal, _ := middleware.GetPrincipal(r.Context())
	status, payload, err := h.chat.Send(r.Context(), principal.UserID, body.Query)
	if err != nil {
		log.Printf("[user] chat backend: %v", err)
		respondError(w, http.StatusBadGateway, "CHAT_UNAVAILABLE", "Chat service is unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
