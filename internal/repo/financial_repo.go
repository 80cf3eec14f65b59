package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// FinancialRepo defines financial-health submission persistence.
type FinancialRepo interface {
	Create(ctx context.Context, d model.FinancialData) (model.FinancialData, error)
	// LatestForUser returns the most recent submission for the user.
	LatestForUser(ctx context.Context, userID uuid.UUID) (model.FinancialData, error)
}

type financialRepo struct {
	db *sql.DB
}

// NewFinancialRepo creates a Postgres-backed FinancialRepo.
func NewFinancialRepo(db *sql.DB) FinancialRepo {
	return &financialRepo{db: db}
}

const financialColumns = `id, user_id, monthly_savings, sip_investments, total_assets, total_loans,
	monthly_emi, credit_card_outstanding, insurance_coverage, tax_savings, retirement_fund,
	monthly_income, monthly_expenses, savings_ratio, score, rating, created_at`

func scanFinancial(row interface{ Scan(...any) error }) (model.FinancialData, error) {
	var d model.FinancialData
	err := row.Scan(&d.ID, &d.UserID, &d.MonthlySavings, &d.SIPInvestments, &d.TotalAssets,
		&d.TotalLoans, &d.MonthlyEMI, &d.CreditCardOutstanding, &d.InsuranceCoverage,
		&d.TaxSavings, &d.RetirementFund, &d.MonthlyIncome, &d.MonthlyExpenses,
		&d.SavingsRatio, &d.Score, &d.Rating, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.FinancialData{}, ErrNotFound
		}
		return model.FinancialData{}, fmt.Errorf("scan financial data: %w", err)
	}
	return d, nil
}

func (r *financialRepo) Create(ctx context.Context, d model.FinancialData) (model.FinancialData, error) {
	return scanFinancial(r.db.QueryRowContext(ctx, `
		INSERT INTO financial_data (
			user_id, monthly_savings, sip_investments, total_assets, total_loans,
			monthly_emi, credit_card_outstanding, insurance_coverage, tax_savings,
			retirement_fund, monthly_income, monthly_expenses, savings_ratio, score, rating
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+financialColumns,
		d.UserID, d.MonthlySavings, d.SIPInvestments, d.TotalAssets, d.TotalLoans,
		d.MonthlyEMI, d.CreditCardOutstanding, d.InsuranceCoverage, d.TaxSavings,
		d.RetirementFund, d.MonthlyIncome, d.MonthlyExpenses, d.SavingsRatio, d.Score, d.Rating,
	))
}

func (r *financialRepo) LatestForUser(ctx context.Context, userID uuid.UUID) (model.FinancialData, error) {
	return scanFinancial(r.db.QueryRowContext(ctx, `
		SELECT `+financialColumns+` FROM financial_data
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID))
}
