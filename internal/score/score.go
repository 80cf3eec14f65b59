// Package score computes the financial-health score: a weighted sum of four
// pillars (wealth growth, credit health, future security, income/expenses),
// each capped, on a 0-1000 scale.
package score

import "math"

const (
	weightWealthGrowth   = 0.30
	weightCreditHealth   = 0.20
	weightFutureSecurity = 0.20
	weightIncomeExpenses = 0.30
)

// Input holds one financial-health submission. Denominators that arrive as
// zero (or negative) are treated as 1 to keep the ratios defined.
type Input struct {
	MonthlySavings        float64 `json:"monthlySavings"`
	SIPInvestments        float64 `json:"sipInvestments"`
	TotalAssets           float64 `json:"totalAssets"`
	TotalLoans            float64 `json:"totalLoans"`
	MonthlyEMI            float64 `json:"monthlyEmi"`
	CreditCardOutstanding float64 `json:"creditCardOutstanding"`
	InsuranceCoverage     float64 `json:"insuranceCoverage"`
	TaxSavings            float64 `json:"taxSavings"`
	RetirementFund        float64 `json:"retirementFund"`
	MonthlyIncome         float64 `json:"monthlyIncome"`
	MonthlyExpenses       float64 `json:"monthlyExpenses"`
	SavingsRatio          float64 `json:"savingsRatio"`
}

func orOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func capped(v float64) float64 {
	return math.Min(v, 1)
}

// Calculate returns the rounded score and its rating band.
func Calculate(in Input) (int, string) {
	income := orOne(in.MonthlyIncome)
	assets := orOne(in.TotalAssets)
	loans := orOne(in.TotalLoans)

	savingsScore := capped((in.MonthlySavings+in.SIPInvestments)/income) * 500
	assetScore := capped(assets/loans) * 500
	wealthGrowth := savingsScore + assetScore

	emiScore := (1 - capped(in.MonthlyEMI/income)) * 500
	ccScore := (1 - capped(in.CreditCardOutstanding/assets)) * 500
	creditHealth := emiScore + ccScore

	futureSecurity := capped((in.InsuranceCoverage+in.RetirementFund+in.TaxSavings)/(income*36)) * 1000

	incomeExpenses := capped(in.SavingsRatio) * 1000

	total := weightWealthGrowth*wealthGrowth +
		weightCreditHealth*creditHealth +
		weightFutureSecurity*futureSecurity +
		weightIncomeExpenses*incomeExpenses

	return int(math.Round(total)), Rating(total)
}

// Rating maps a score to its band.
func Rating(score float64) string {
	switch {
	case score >= 800:
		return "Excellent"
	case score >= 650:
		return "Very Good"
	case score >= 500:
		return "Good"
	default:
		return "Needs Improvement"
	}
}
