package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
)

// GlossaryHandler serves the financial glossary and its admin CRUD.
type GlossaryHandler struct {
	terms repo.GlossaryRepo
}

// NewGlossaryHandler creates a GlossaryHandler.
func NewGlossaryHandler(terms repo.GlossaryRepo) *GlossaryHandler {
	return &GlossaryHandler{terms: terms}
}

// HandleList serves GET /glossary with optional ?search= filtering.
func (h *GlossaryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	terms, err := h.terms.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		log.Printf("[glossary] list: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, terms)
}

type glossaryBody struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// HandleCreate serves POST /admin/glossary.
func (h *GlossaryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body glossaryBody
	if err := decodeJSON(r, &body); err != nil || body.Term == "" || body.Definition == "" {
		respondAdminError(w, http.StatusBadRequest, "term and definition are required")
		return
	}
	term, err := h.terms.Create(r.Context(), model.GlossaryTerm{Term: body.Term, Definition: body.Definition})
	if err != nil {
		log.Printf("[glossary] create: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not create term")
		return
	}
	respondJSON(w, http.StatusCreated, term)
}

// HandleUpdate serves PUT /admin/glossary/{id}.
func (h *GlossaryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondAdminError(w, http.StatusBadRequest, "Invalid term id")
		return
	}
	var body glossaryBody
	if err := decodeJSON(r, &body); err != nil || body.Term == "" || body.Definition == "" {
		respondAdminError(w, http.StatusBadRequest, "term and definition are required")
		return
	}
	term, err := h.terms.Update(r.Context(), model.GlossaryTerm{ID: id, Term: body.Term, Definition: body.Definition})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondAdminError(w, http.StatusNotFound, "Term not found")
			return
		}
		log.Printf("[glossary] update: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not update term")
		return
	}
	respondJSON(w, http.StatusOK, term)
}

// HandleDelete serves DELETE /admin/glossary/{id}.
func (h *GlossaryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondAdminError(w, http.StatusBadRequest, "Invalid term id")
		return
	}
	if err := h.terms.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondAdminError(w, http.StatusNotFound, "Term not found")
			return
		}
		log.Printf("[glossary] delete: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not delete term")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
