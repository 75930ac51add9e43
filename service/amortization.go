package service

import (
	"math"

	"loan-calculator/domain"
)

// roundTo2Decimals rounds a float64 to 2 decimals.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// Compute returns the annuity payment for a loan. Degenerate or non-finite
// inputs yield a zero result rather than an error.
func Compute(principal, annualRatePercent float64, termMonths int) domain.LoanResult {
	if !finite(principal) || !finite(annualRatePercent) {
		return domain.LoanResult{}
	}
	if principal <= 0 || annualRatePercent <= 0 || termMonths <= 0 {
		return domain.LoanResult{}
	}

	monthlyRate := annualRatePercent / 100 / 12
	n := float64(termMonths)
	growth := math.Pow(1+monthlyRate, n)

	monthly := principal * monthlyRate * growth / (growth - 1)
	total := monthly * n
	result := domain.LoanResult{
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - principal,
	}
	if !finite(result.MonthlyPayment) || !finite(result.TotalPayment) {
		return domain.LoanResult{}
	}
	return result
}

// ComputeInputs is Compute over a LoanInputs value.
func ComputeInputs(in domain.LoanInputs) domain.LoanResult {
	return Compute(in.Principal, in.AnnualRatePercent, in.TermMonths)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
