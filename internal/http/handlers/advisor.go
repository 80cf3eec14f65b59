package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fin100x/server/internal/middleware"
	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
	"github.com/fin100x/server/internal/storage"
)

// AdvisorHandler serves advisor listings, reviews and admin CRUD.
type AdvisorHandler struct {
	advisors repo.AdvisorRepo
	reviews  repo.ReviewRepo
	signer   storage.URLSigner
}

// NewAdvisorHandler creates an AdvisorHandler.
func NewAdvisorHandler(advisors repo.AdvisorRepo, reviews repo.ReviewRepo, signer storage.URLSigner) *AdvisorHandler {
	return &AdvisorHandler{advisors: advisors, reviews: reviews, signer: signer}
}

type advisorResponse struct {
	model.Advisor
	ImageURL      string  `json:"imageUrl,omitempty"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

func (h *AdvisorHandler) present(r *http.Request, a model.Advisor) advisorResponse {
	out := advisorResponse{Advisor: a}
	if a.ImageObject != nil {
		url, err := h.signer.SignedURL(*a.ImageObject)
		if err != nil {
			log.Printf("[advisor] sign image url: %v", err)
		} else {
			out.ImageURL = url
		}
	}
	avg, count, err := h.reviews.AverageRating(r.Context(), a.ID)
	if err != nil {
		log.Printf("[advisor] average rating: %v", err)
	} else {
		out.AverageRating = avg
		out.ReviewCount = count
	}
	return out
}

// HandleList serves GET /advisor.
func (h *AdvisorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	advisors, err := h.advisors.List(r.Context())
	if err != nil {
		log.Printf("[advisor] list: %v", err)
		respondServerError(w)
		return
	}
	out := make([]advisorResponse, 0, len(advisors))
	for _, a := range advisors {
		out = append(out, h.present(r, a))
	}
	respondJSON(w, http.StatusOK, out)
}

func advisorID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// HandleGet serves GET /advisor/{id}.
func (h *AdvisorHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := advisorID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid advisor id")
		return
	}
	a, err := h.advisors.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Advisor not found")
			return
		}
		log.Printf("[advisor] get: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, h.present(r, a))
}

type reviewBody struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// HandleCreateReview serves POST /advisor/{id}/reviews.
func (h *AdvisorHandler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := advisorID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid advisor id")
		return
	}
	var body reviewBody
	if err := decodeJSON(r, &body); err != nil || body.Rating < 1 || body.Rating > 5 {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "rating must be between 1 and 5")
		return
	}

	principal, _ := middleware.GetPrincipal(r.Context())
	review, err := h.reviews.Create(r.Context(), model.Review{
		AdvisorID: id,
		UserID:    principal.UserID,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		log.Printf("[advisor] create review: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

// HandleListReviews serves GET /advisor/{id}/reviews.
func (h *AdvisorHandler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := advisorID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid advisor id")
		return
	}
	limit, offset := pagination(r)
	reviews, err := h.reviews.ListByAdvisor(r.Context(), id, limit, offset)
	if err != nil {
		log.Printf("[advisor] list reviews: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

type advisorBody struct {
	Salutation      string   `json:"salutation"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Designation     string   `json:"designation"`
	YearsExperience int      `json:"yearsExperience"`
	ExpertiseTags   []string `json:"expertiseTags"`
	Role            string   `json:"role"`
	ImageObject     *string  `json:"imageObject"`
}

// HandleCreate serves POST /admin/advisors.
func (h *AdvisorHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body advisorBody
	if err := decodeJSON(r, &body); err != nil || body.FirstName == "" || body.LastName == "" {
		respondAdminError(w, http.StatusBadRequest, "firstName and lastName are required")
		return
	}
	if body.Role == "" {
		body.Role = "advisor"
	}
	a, err := h.advisors.Create(r.Context(), model.Advisor{
		Salutation:      body.Salutation,
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Designation:     body.Designation,
		YearsExperience: body.YearsExperience,
		ExpertiseTags:   body.ExpertiseTags,
		Role:            body.Role,
		ImageObject:     body.ImageObject,
	})
	if err != nil {
		log.Printf("[advisor] create: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not create advisor")
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// HandleUpdate serves PUT /admin/advisors/{id}.
func (h *AdvisorHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := advisorID(r)
	if !ok {
		respondAdminError(w, http.StatusBadRequest, "Invalid advisor id")
		return
	}
	var body advisorBody
	if err := decodeJSON(r, &body); err != nil {
		respondAdminError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	a, err := h.advisors.Update(r.Context(), model.Advisor{
		ID:              id,
		Salutation:      body.Salutation,
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Designation:     body.Designation,
		YearsExperience: body.YearsExperience,
		ExpertiseTags:   body.ExpertiseTags,
		Role:            body.Role,
		ImageObject:     body.ImageObject,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondAdminError(w, http.StatusNotFound, "Advisor not found")
			return
		}
		log.Printf("[advisor] update: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not update advisor")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// HandleDelete serves DELETE /admin/advisors/{id}.
func (h *AdvisorHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := advisorID(r)
	if !ok {
		respondAdminError(w, http.StatusBadRequest, "Invalid advisor id")
		return
	}
	if err := h.advisors.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondAdminError(w, http.StatusNotFound, "Advisor not found")
			return
		}
		log.Printf("[advisor] delete: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not delete advisor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
