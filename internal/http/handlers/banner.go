package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
	"github.com/fin100x/server/internal/storage"
)

// BannerHandler serves banner listings and admin CRUD. Image object names
// are resolved into signed URLs on the way out.
type BannerHandler struct {
	banners repo.BannerRepo
	signer  storage.URLSigner
}

// NewBannerHandler creates a BannerHandler.
func NewBannerHandler(banners repo.BannerRepo, signer storage.URLSigner) *BannerHandler {
	return &BannerHandler{banners: banners, signer: signer}
}

func (h *BannerHandler) sign(banners []model.Banner) []model.Banner {
	for i := range banners {
		url, err := h.signer.SignedURL(banners[i].ImageObject)
		if err != nil {
			log.Printf("[banner] sign image url: %v", err)
			continue
		}
		banners[i].ImageObject = url
	}
	return banners
}

// HandleListActive serves GET /banners. Public; only banners inside their
// validity window are returned.
func (h *BannerHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	banners, err := h.banners.ListActive(r.Context(), r.URL.Query().Get("screen"), time.Now())
	if err != nil {
		log.Printf("[banner] list active: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, h.sign(banners))
}

// HandleList serves GET /admin/banners.
func (h *BannerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	banners, err := h.banners.List(r.Context())
	if err != nil {
		log.Printf("[banner] list: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not list banners")
		return
	}
	respondJSON(w, http.StatusOK, h.sign(banners))
}

type bannerBody struct {
	Title       string    `json:"title"`
	ImageObject string    `json:"imageObject"`
	RedirectURL string    `json:"redirectUrl"`
	Screen      string    `json:"screen"`
	ValidFrom   time.Time `json:"validFrom"`
	ValidTill   time.Time `json:"validTill"`
	IsActive    *bool     `json:"isActive"`
}

func (b bannerBody) toModel() model.Banner {
	active := true
	if b.IsActive != nil {
		active = *b.IsActive
	}
	screen := b.Screen
	if screen == "" {
		screen = "home"
	}
	return model.Banner{
		Title:       b.Title,
		ImageObject: b.ImageObject,
		RedirectURL: b.RedirectURL,
		Screen:      screen,
		ValidFrom:   b.ValidFrom,
		ValidTill:   b.ValidTill,
		IsActive:    active,
	}
}

// HandleCreate serves POST /admin/banners.
func (h *BannerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body bannerBody
	if err := decodeJSON(r, &body); err != nil || body.Title == "" || body.ImageObject == "" {
		respondAdminError(w, http.StatusBadRequest, "title and imageObject are required")
		return
	}
	if !body.ValidTill.After(body.ValidFrom) {
		respondAdminError(w, http.StatusBadRequest, "validTill must be after validFrom")
		return
	}
	banner, err := h.banners.Create(r.Context(), body.toModel())
	if err != nil {
		log.Printf("[banner] create: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not create banner")
		return
	}
	respondJSON(w, http.StatusCreated, banner)
}

// HandleUpdate serves PUT /admin/banners/{id}.
func (h *BannerHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondAdminError(w, http.StatusBadRequest, "Invalid banner id")
		return
	}
	var body bannerBody
	if err := decodeJSON(r, &body); err != nil {
		respondAdminError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	banner := body.toModel()
	banner.ID = id
	saved, err := h.banners.Update(r.Context(), banner)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondAdminError(w, http.StatusNotFound, "Banner not found")
			return
		}
		log.Printf("[banner] update: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not update banner")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// HandleDelete serves DELETE /admin/banners/{id}.
func (h *BannerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondAdminError(w, http.StatusBadRequest, "Invalid banner id")
		return
	}
	if err := h.banners.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondAdminError(w, http.StatusNotFound, "Banner not found")
			return
		}
		log.Printf("[banner] delete: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not delete banner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
