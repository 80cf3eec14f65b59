package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/fin100x/server/internal/middleware"
	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
	"github.com/fin100x/server/internal/score"
)

// FinancialHandler serves financial-health submissions and scores.
type FinancialHandler struct {
	financials repo.FinancialRepo
}

// NewFinancialHandler creates a FinancialHandler.
func NewFinancialHandler(financials repo.FinancialRepo) *FinancialHandler {
	return &FinancialHandler{financials: financials}
}

// HandleSubmit serves POST /financial. The score is computed server-side
// from the submitted figures.
func (h *FinancialHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in score.Input
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed request body")
		return
	}

	principal, _ := middleware.GetPrincipal(r.Context())
	total, rating := score.Calculate(in)

	saved, err := h.financials.Create(r.Context(), model.FinancialData{
		UserID:                principal.UserID,
		MonthlySavings:        in.MonthlySavings,
		SIPInvestments:        in.SIPInvestments,
		TotalAssets:           in.TotalAssets,
		TotalLoans:            in.TotalLoans,
		MonthlyEMI:            in.MonthlyEMI,
		CreditCardOutstanding: in.CreditCardOutstanding,
		InsuranceCoverage:     in.InsuranceCoverage,
		TaxSavings:            in.TaxSavings,
		RetirementFund:        in.RetirementFund,
		MonthlyIncome:         in.MonthlyIncome,
		MonthlyExpenses:       in.MonthlyExpenses,
		SavingsRatio:          in.SavingsRatio,
		Score:                 total,
		Rating:                rating,
	})
	if err != nil {
		log.Printf("[financial] save submission: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// HandleLatest serves GET /financial/latest.
func (h *FinancialHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	latest, err := h.financials.LatestForUser(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No financial data submitted yet")
			return
		}
		log.Printf("[financial] load latest: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, latest)
}
