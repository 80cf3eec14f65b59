package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fin100x/server/internal/score"
)

func TestCalculate(t *testing.T) {
	in := score.Input{
		MonthlySavings:        20000,
		SIPInvestments:        10000,
		TotalAssets:           500000,
		TotalLoans:            100000,
		MonthlyEMI:            10000,
		CreditCardOutstanding: 50000,
		InsuranceCoverage:     1000000,
		TaxSavings:            100000,
		RetirementFund:        500000,
		MonthlyIncome:         100000,
		MonthlyExpenses:       70000,
		SavingsRatio:          0.3,
	}

	// wealth growth: (30000/100000)*500 + min(5,1)*500 = 150 + 500 = 650
	// credit health: (1-0.1)*500 + (1-0.1)*500 = 900
	// future security: 1600000/3600000*1000 = 444.44
	// income/expenses: 0.3*1000 = 300
	// 0.3*650 + 0.2*900 + 0.2*444.44 + 0.3*300 = 553.89
	total, rating := score.Calculate(in)
	assert.Equal(t, 554, total)
	assert.Equal(t, "Good", rating)
}

func TestCalculateZeroInput(t *testing.T) {
	total, rating := score.Calculate(score.Input{})

	// Zero denominators count as 1, so assets/loans still yields a full
	// asset score and the zero debt figures a full credit score.
	assert.Equal(t, 350, total)
	assert.Equal(t, "Needs Improvement", rating)
}

func TestCalculateCapsComponents(t *testing.T) {
	in := score.Input{
		MonthlySavings:        1e9,
		TotalAssets:           1e9,
		TotalLoans:            1,
		InsuranceCoverage:     1e12,
		MonthlyIncome:         1000,
		SavingsRatio:          5,
		MonthlyEMI:            0,
		CreditCardOutstanding: 0,
	}

	total, rating := score.Calculate(in)
	assert.Equal(t, 1000, total)
	assert.Equal(t, "Excellent", rating)
}

func TestRatingBands(t *testing.T) {
	assert.Equal(t, "Excellent", score.Rating(800))
	assert.Equal(t, "Very Good", score.Rating(799))
	assert.Equal(t, "Very Good", score.Rating(650))
	assert.Equal(t, "Good", score.Rating(649))
	assert.Equal(t, "Good", score.Rating(500))
	assert.Equal(t, "Needs Improvement", score.Rating(499))
}
