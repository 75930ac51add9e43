package domain

import "math"

// LoanInputs are the authoritative numeric inputs of a calculation.
type LoanInputs struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent"`
	TermMonths        int     `json:"termMonths"`
}

// Valid reports whether the inputs produce a meaningful payment.
func (in LoanInputs) Valid() bool {
	return in.Principal > 0 && in.AnnualRatePercent > 0 && in.TermMonths > 0
}

// WholeMonths truncates a parsed term to whole months. Non-positive and NaN
// terms give 0; huge terms saturate at math.MaxInt32 so limit checks still
// see them.
func WholeMonths(v float64) int {
	if !(v > 0) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

type LoanResult struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
}

// DisplayState holds the formatted representation of a result.
// It is always derived from LoanInputs and LoanResult, never parsed back.
type DisplayState struct {
	LoanAmount     string `json:"loanAmount"`
	MonthlyPayment string `json:"monthlyPayment"`
	TotalPayment   string `json:"totalPayment"`
	TotalInterest  string `json:"totalInterest"`
}
