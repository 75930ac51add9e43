package format

import "loan-calculator/domain"

// Display renders a result the way the calculator outputs show it: the
// principal in whole units and payments with two decimals. Degenerate inputs
// render every field as a bare zero amount.
func (l Locale) Display(in domain.LoanInputs, res domain.LoanResult) domain.DisplayState {
	if !in.Valid() || res == (domain.LoanResult{}) {
		zero := "0" + l.rule.CurrencySuffix
		return domain.DisplayState{
			LoanAmount:     zero,
			MonthlyPayment: zero,
			TotalPayment:   zero,
			TotalInterest:  zero,
		}
	}

	return domain.DisplayState{
		LoanAmount:     l.Currency(in.Principal, 0),
		MonthlyPayment: l.Currency(res.MonthlyPayment, 2),
		TotalPayment:   l.Currency(res.TotalPayment, 2),
		TotalInterest:  l.Currency(res.TotalInterest, 2),
	}
}
